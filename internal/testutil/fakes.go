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

package test

import (
	"context"
	"sync"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// FakeClassifier returns a fixed prediction and records the inputs it saw.
type FakeClassifier struct {
	Prediction model.Prediction
	Err        error

	mu     sync.Mutex
	inputs []string
}

// Classify implements the classifier interface.
func (f *FakeClassifier) Classify(ctx context.Context, text string) (model.Prediction, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	if f.Err != nil {
		return model.Prediction{}, f.Err
	}
	return f.Prediction, nil
}

// Inputs returns the texts classified so far.
func (f *FakeClassifier) Inputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

// FakeTranscriber returns a fixed transcript or error and counts calls.
type FakeTranscriber struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls int
	last  []byte
}

// Transcribe implements the transcriber interface.
func (f *FakeTranscriber) Transcribe(_ context.Context, wav []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = wav
	return f.Text, f.Err
}

// Calls returns how often Transcribe was invoked.
func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastAudio returns the WAV payload of the most recent call.
func (f *FakeTranscriber) LastAudio() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
