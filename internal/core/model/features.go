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

// Package model defines the data structures that flow through a video
// analysis request. Nothing here is persisted: every value lives only for the
// duration of one request.
//
// This file holds the feature records produced by the three extractors.
package model

// MaxSampledFrames is the upper bound on frames inspected per video.
const MaxSampledFrames = 25

// SceneChangeThreshold is the per-frame motion score above which a sampled
// frame counts as a scene change.
const SceneChangeThreshold = 15.0

// FrameMetrics holds the statistics computed for one sampled frame.
type FrameMetrics struct {
	FrameIndex    int     `json:"frame_index"`    // Position among the sampled frames, starting at 0.
	Brightness    float64 `json:"brightness"`     // Mean luma.
	Contrast      float64 `json:"contrast"`       // Population standard deviation of luma.
	EdgeDensity   float64 `json:"edge_density"`   // Edge pixels scaled by 255 over the pixel count.
	ColorVariance float64 `json:"color_variance"` // Standard deviation of the HSV saturation channel.
	MotionScore   float64 `json:"motion_score"`   // Mean absolute luma difference to the previous sample.
	BlurScore     float64 `json:"blur_score"`     // Variance of the Laplacian response.
}

// FrameFeatures is the video level record produced by the frame analyzer.
type FrameFeatures struct {
	VideoID           string         `json:"video_id"`
	FrameCount        int            `json:"frame_count"`
	FPS               float64        `json:"fps"`
	Duration          float64        `json:"duration"`
	SampledFrames     int            `json:"sampled_frames"`
	SceneChanges      int            `json:"scene_changes"`
	VisualFeatures    []FrameMetrics `json:"visual_features"`
	OverallBrightness float64        `json:"overall_brightness"`
	OverallContrast   float64        `json:"overall_contrast"`
	OverallComplexity float64        `json:"overall_complexity"` // Mean edge density.
	OverallMotion     float64        `json:"overall_motion"`     // Sum of motion scores.
	OverallBlur       float64        `json:"overall_blur"`
}

// AudioFeatures is the record produced by the audio analyzer.
type AudioFeatures struct {
	VideoID          string    `json:"video_id"`
	Duration         float64   `json:"duration"`
	SampleRate       int       `json:"sample_rate"`
	Energy           float64   `json:"energy"`
	Tempo            float64   `json:"tempo"`
	ZeroCrossingRate float64   `json:"zero_crossing_rate"`
	SpectralFlatness float64   `json:"spectral_flatness"`
	MFCC             []float64 `json:"mfcc_features"`
	SpectralCentroid float64   `json:"spectral_centroid"`
}

// Sentinel transcripts used when no real transcript is available.
const (
	NoSpeechText           = "No speech detected"
	ServiceUnavailableText = "Speech recognition service unavailable"
	SpeechErrorText        = "Error processing audio"
)

// SpeechConfidence is the fixed confidence reported for a successful
// transcript. It is a constant, not a calibrated probability.
const SpeechConfidence = 0.8

// SpeechResult is the record produced by the speech transcriber.
type SpeechResult struct {
	VideoID       string  `json:"video_id,omitempty"` // Empty on the generic error path.
	ExtractedText string  `json:"extracted_text"`
	Confidence    float64 `json:"confidence"`
	HasSpeech     bool    `json:"has_speech"`
}
