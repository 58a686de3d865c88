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
// declares the interfaces; base_chain.go, base_command.go, base_context.go and
// fan_out.go hold the default implementations.
//
// A request flows through the package like this:
//
//  1. The HTTP handler creates a Context, sets the request's Go context on it
//     and defers Close so temp files are always removed.
//  2. A Chain executes its commands in order, each inside its own span.
//  3. Commands read inputs from the Context, write outputs back to it and
//     record failures with AddError instead of returning them.
//  4. The handler inspects HasErrors / JoinErrors to pick the response.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys a BaseChain uses to pipe one command's
// output into the next command's input.
const (
	// CtxIn is the default input key. The chain fills it with the previous
	// command's CtxOut value.
	CtxIn = "__IN__"
	// CtxOut is the default output key.
	CtxOut = "__OUT__"
)

// Context is the shared state for a single workflow execution. Implementations
// must be safe for concurrent use because a FanOut runs commands in parallel
// against the same Context.
type Context interface {
	// SetContext sets the Go context used for cancellation and span propagation.
	SetContext(context context.Context)

	// GetContext returns the Go context currently associated with the workflow.
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error against the command (or stage) that produced it.
	AddError(key string, err error)

	// GetErrors returns a copy of the recorded errors keyed by command name.
	GetErrors() map[string]error

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes key.
	Remove(key string)

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// AddTempFile registers a file to be deleted by Close.
	AddTempFile(file string)

	// GetTempFiles returns the registered temp files.
	GetTempFiles() []string

	// Close deletes every registered temp file. It is safe to call more than once.
	Close()
}

// Executable is anything with a unit of work driven by a Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, testable step of a workflow.
type Command interface {
	Executable

	// GetName returns the command name used for spans, metrics and error keys.
	GetName() string

	// GetInputParam returns the Context key holding the command's primary input.
	GetInputParam() string

	// GetOutputParam returns the Context key the command writes its output to.
	GetOutputParam() string

	// IsExecutable reports whether the Context holds what the command needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command made of other Commands executed in order.
type Chain interface {
	Command

	// ContinueOnFailure controls whether the chain keeps going after a
	// command records an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
