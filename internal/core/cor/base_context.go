// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) provides the building blocks used to
// express the video analysis request as a sequence of commands. This file
// defines BaseContext, the default Context implementation.
//
// BaseContext is the per-request "property bag": a data map shared by the
// commands, an error map keyed by command name, the list of temp files that
// must not outlive the request, and the Go context carrying the active span.
// All access goes through a mutex so that FanOut can run the extractors in
// parallel against the same BaseContext.
package cor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// BaseContext is the default implementation of the Context interface.
type BaseContext struct {
	mu        sync.RWMutex
	data      map[string]interface{} // Values shared between commands.
	errors    map[string]error       // Errors keyed by the command that produced them.
	tempFiles []string               // Files removed by Close.
	context   context.Context        // Go context for cancellation and span propagation.
}

// NewBaseContext creates an empty Context ready for use.
//
// Outputs:
//   - Context: a new, empty context object.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

// SetContext sets the underlying Go context.
func (c *BaseContext) SetContext(context context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context = context
}

// GetContext returns the underlying Go context.
func (c *BaseContext) GetContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.context
}

// Close removes every temp file registered with AddTempFile. Files that are
// already gone are ignored so Close can be deferred and also called early.
func (c *BaseContext) Close() {
	c.mu.Lock()
	files := c.tempFiles
	c.tempFiles = make([]string, 0)
	c.mu.Unlock()

	for _, file := range files {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove temporary file", "file", file, "error", err)
		}
	}
}

// Add stores value under key.
//
// Inputs:
//   - key: the string key to store the data under.
//   - value: the data (of any type) to store.
//
// Outputs:
//   - Context: the context instance, allowing for fluent method chaining.
func (c *BaseContext) Add(key string, value interface{}) Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return c
}

// AddTempFile registers file for removal by Close.
func (c *BaseContext) AddTempFile(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempFiles = append(c.tempFiles, file)
}

// GetTempFiles returns a copy of the registered temp file paths.
func (c *BaseContext) GetTempFiles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.tempFiles))
	copy(out, c.tempFiles)
	return out
}

// AddError records err against key, normally the command name.
func (c *BaseContext) AddError(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[key] = err
}

// GetErrors returns a copy of the recorded errors.
func (c *BaseContext) GetErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]error, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Get returns the value stored under key, or nil when absent.
func (c *BaseContext) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

// Remove deletes key from the data map.
func (c *BaseContext) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// HasErrors reports whether any error was recorded.
func (c *BaseContext) HasErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.errors) > 0
}

// JoinErrors collapses the errors recorded on context into a single error,
// ordered by command name so the message is stable. It returns nil when no
// error was recorded. A single error is returned unwrapped so that its text
// is used verbatim in responses.
func JoinErrors(context Context) error {
	errs := context.GetErrors()
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		for _, err := range errs {
			return err
		}
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	joined := make([]error, 0, len(keys))
	for _, k := range keys {
		joined = append(joined, fmt.Errorf("%s: %w", k, errs[k]))
	}
	return errors.Join(joined...)
}
