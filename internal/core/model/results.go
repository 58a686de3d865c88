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

package model

import "encoding/json"

// Defaults used when a modality could not be analyzed.
const (
	DefaultBrightness    = 128.0
	DefaultContrast      = 50.0
	DefaultComplexity    = 0.5
	DefaultEnergy        = 0.5
	DefaultTempo         = 120.0
	DefaultAudioDuration = 5.0
)

// errorRecord is the wire shape of a failed extractor.
type errorRecord struct {
	Error string `json:"error"`
}

// FrameResult is either frame features or the reason they are missing.
// Exactly one of Features and Err is set.
type FrameResult struct {
	Features *FrameFeatures
	Err      error
}

// FrameOk wraps successful frame features.
func FrameOk(f *FrameFeatures) FrameResult { return FrameResult{Features: f} }

// FrameErr wraps a frame analysis failure.
func FrameErr(err error) FrameResult { return FrameResult{Err: err} }

// Ok reports whether features are available.
func (r FrameResult) Ok() bool { return r.Err == nil && r.Features != nil }

// MarshalJSON writes the features, or {"error": "..."} on failure.
func (r FrameResult) MarshalJSON() ([]byte, error) {
	if !r.Ok() {
		return json.Marshal(errorRecord{Error: errorText(r.Err)})
	}
	return json.Marshal(r.Features)
}

// Brightness returns the overall brightness or its default.
func (r FrameResult) Brightness() float64 {
	if r.Ok() {
		return r.Features.OverallBrightness
	}
	return DefaultBrightness
}

// Contrast returns the overall contrast or its default.
func (r FrameResult) Contrast() float64 {
	if r.Ok() {
		return r.Features.OverallContrast
	}
	return DefaultContrast
}

// Complexity returns the overall edge density or its default.
func (r FrameResult) Complexity() float64 {
	if r.Ok() {
		return r.Features.OverallComplexity
	}
	return DefaultComplexity
}

// Motion returns the summed motion score, 0 when unavailable.
func (r FrameResult) Motion() float64 {
	if r.Ok() {
		return r.Features.OverallMotion
	}
	return 0
}

// SceneChanges returns the scene change count, 0 when unavailable.
func (r FrameResult) SceneChanges() int {
	if r.Ok() {
		return r.Features.SceneChanges
	}
	return 0
}

// Blur returns the mean blur score, 0 when unavailable.
func (r FrameResult) Blur() float64 {
	if r.Ok() {
		return r.Features.OverallBlur
	}
	return 0
}

// SampledFrames returns the number of sampled frames, 0 when unavailable.
func (r FrameResult) SampledFrames() int {
	if r.Ok() {
		return r.Features.SampledFrames
	}
	return 0
}

// AudioResult is either audio features or the reason they are missing.
type AudioResult struct {
	Features *AudioFeatures
	Err      error
}

// AudioOk wraps successful audio features.
func AudioOk(f *AudioFeatures) AudioResult { return AudioResult{Features: f} }

// AudioErr wraps an audio analysis failure.
func AudioErr(err error) AudioResult { return AudioResult{Err: err} }

// Ok reports whether features are available.
func (r AudioResult) Ok() bool { return r.Err == nil && r.Features != nil }

// MarshalJSON writes the features, or {"error": "..."} on failure.
func (r AudioResult) MarshalJSON() ([]byte, error) {
	if !r.Ok() {
		return json.Marshal(errorRecord{Error: errorText(r.Err)})
	}
	return json.Marshal(r.Features)
}

// Energy returns the mean RMS energy or its default.
func (r AudioResult) Energy() float64 {
	if r.Ok() {
		return r.Features.Energy
	}
	return DefaultEnergy
}

// Tempo returns the tempo estimate or its default.
func (r AudioResult) Tempo() float64 {
	if r.Ok() {
		return r.Features.Tempo
	}
	return DefaultTempo
}

// Duration returns the audio duration or its default.
func (r AudioResult) Duration() float64 {
	if r.Ok() {
		return r.Features.Duration
	}
	return DefaultAudioDuration
}

func errorText(err error) string {
	if err == nil {
		return "no features available"
	}
	return err.Error()
}
