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

package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// Extraction defaults.
const (
	DefaultSampleRate         = 16000
	DefaultCalibrationSeconds = 0.5
)

// PCMSource decodes the audio track of a file. *media.Executor implements it.
type PCMSource interface {
	DecodePCM16(ctx context.Context, path string, sampleRate int) ([]int16, error)
}

// Extractor transcribes the speech of a video.
type Extractor struct {
	source      PCMSource
	transcriber Transcriber
	sampleRate  int
	calibration float64
	timeout     time.Duration
}

// NewExtractor creates an extractor. Zero values select the defaults; a zero
// timeout leaves the caller's deadline in charge of the service call.
func NewExtractor(source PCMSource, transcriber Transcriber, sampleRate int, calibrationSeconds float64, timeout time.Duration) *Extractor {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if calibrationSeconds <= 0 {
		calibrationSeconds = DefaultCalibrationSeconds
	}
	if transcriber == nil {
		transcriber = UnavailableTranscriber{}
	}
	return &Extractor{
		source:      source,
		transcriber: transcriber,
		sampleRate:  sampleRate,
		calibration: calibrationSeconds,
		timeout:     timeout,
	}
}

// Transcribe returns the transcript of the file, ErrNoSpeech,
// ErrServiceUnavailable or another error.
func (e *Extractor) Transcribe(ctx context.Context, path string) (string, error) {
	samples, err := e.source.DecodePCM16(ctx, path, e.sampleRate)
	if err != nil {
		return "", err
	}
	_, consumed := Calibrate(samples, e.sampleRate, e.calibration)
	remainder := samples[consumed:]

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	text, err := e.transcriber.Transcribe(callCtx, media.EncodeWAV(remainder, e.sampleRate))
	if err != nil && !errors.Is(err, ErrNoSpeech) && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return text, err
}

// Extract transcribes the file and folds every outcome into a SpeechResult.
// It never fails: errors become the fixed sentinel texts.
func (e *Extractor) Extract(ctx context.Context, path string, videoID string) model.SpeechResult {
	text, err := e.Transcribe(ctx, path)
	switch {
	case err == nil:
		return model.SpeechResult{VideoID: videoID, ExtractedText: text, Confidence: model.SpeechConfidence, HasSpeech: true}
	case errors.Is(err, ErrNoSpeech):
		return model.SpeechResult{VideoID: videoID, ExtractedText: model.NoSpeechText}
	case errors.Is(err, ErrServiceUnavailable):
		slog.Warn("speech service unavailable", "video_id", videoID, "error", err)
		return model.SpeechResult{VideoID: videoID, ExtractedText: model.ServiceUnavailableText}
	default:
		slog.Error("Error extracting speech", "video_id", videoID, "error", err)
		return model.SpeechResult{ExtractedText: model.SpeechErrorText}
	}
}
