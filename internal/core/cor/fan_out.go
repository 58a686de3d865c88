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
// defines FanOut, a Command that runs independent commands against the same
// Context and returns once all of them finished.
//
// Logic Flow:
//
//  1. A "<name>_execute" span wraps the whole fan-out.
//  2. When concurrency is enabled, one goroutine per command is started and a
//     sync.WaitGroup joins them. Otherwise the commands run one after the
//     other in registration order.
//  3. Every command sees a view of the shared Context whose Go context is its
//     own child span, so spans do not trample each other while the data and
//     error maps stay shared.
//
// Commands inside a FanOut must write to distinct output keys; CtxIn/CtxOut
// piping does not apply between them.
package cor

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/codes"
)

// FanOut runs a set of independent commands and joins them.
type FanOut struct {
	BaseCommand
	concurrent bool
	commands   []Command
}

// NewFanOut creates a FanOut. With concurrent set to false the commands run
// sequentially, which keeps the observable behavior identical.
func NewFanOut(name string, concurrent bool, commands ...Command) *FanOut {
	return &FanOut{
		BaseCommand: *NewBaseCommand(name),
		concurrent:  concurrent,
		commands:    commands,
	}
}

// IsExecutable requires a Go context and that every child is executable.
func (f *FanOut) IsExecutable(context Context) bool {
	if context == nil || context.GetContext() == nil {
		return false
	}
	for _, command := range f.commands {
		if !command.IsExecutable(context) {
			return false
		}
	}
	return true
}

// Execute runs every child command and waits for all of them.
func (f *FanOut) Execute(chCtx Context) {
	outerCtx, span := f.Tracer.Start(chCtx.GetContext(), fmt.Sprintf("%s_execute", f.GetName()))
	defer span.End()

	run := func(command Command) {
		commandCtx, commandSpan := f.Tracer.Start(outerCtx, command.GetName())
		defer commandSpan.End()
		command.Execute(&scopedContext{Context: chCtx, ctx: commandCtx})
		if _, failed := chCtx.GetErrors()[command.GetName()]; failed {
			commandSpan.SetStatus(codes.Error, "error during command execution")
			return
		}
		commandSpan.SetStatus(codes.Ok, "command completed successfully")
	}

	if f.concurrent {
		var wg sync.WaitGroup
		for _, command := range f.commands {
			wg.Add(1)
			go func(c Command) {
				defer wg.Done()
				run(c)
			}(command)
		}
		wg.Wait()
	} else {
		for _, command := range f.commands {
			run(command)
		}
	}

	if chCtx.HasErrors() {
		f.GetErrorCounter().Add(outerCtx, 1)
		span.SetStatus(codes.Error, "fan-out finished with errors")
		return
	}
	f.GetSuccessCounter().Add(outerCtx, 1)
	span.SetStatus(codes.Ok, "fan-out completed successfully")
}

// scopedContext shares everything with the wrapped Context except the Go
// context, which is private to one goroutine.
type scopedContext struct {
	Context
	mu  sync.RWMutex
	ctx context.Context
}

func (s *scopedContext) SetContext(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
}

func (s *scopedContext) GetContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}
