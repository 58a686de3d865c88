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

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// DefaultSampleRate is the analysis sample rate.
const DefaultSampleRate = 22050

// PCMSource decodes the audio track of a file. *media.Executor implements it.
type PCMSource interface {
	DecodeFloat64(ctx context.Context, path string, sampleRate int) ([]float64, error)
}

// Analyzer produces the audio features of a video.
type Analyzer struct {
	source     PCMSource
	sampleRate int
	timeout    time.Duration
}

// NewAnalyzer creates an audio analyzer. A sampleRate of 0 selects
// DefaultSampleRate.
func NewAnalyzer(source PCMSource, sampleRate int, timeout time.Duration) *Analyzer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Analyzer{source: source, sampleRate: sampleRate, timeout: timeout}
}

// Analyze decodes the first audio stream to mono and computes its features.
// A missing, empty or undecodable audio stream is returned as the error
// variant of the result.
func (a *Analyzer) Analyze(ctx context.Context, path string, videoID string) model.AudioResult {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	y, err := a.source.DecodeFloat64(ctx, path, a.sampleRate)
	if err != nil {
		return model.AudioErr(fmt.Errorf("audio analysis: %w", err))
	}
	if len(y) == 0 {
		return model.AudioErr(fmt.Errorf("audio analysis: %w: empty audio stream", media.ErrDecode))
	}

	features := Extract(y, a.sampleRate)
	features.VideoID = videoID
	slog.Debug("audio analyzed", "video_id", videoID, "duration", features.Duration, "tempo", features.Tempo)
	return model.AudioOk(features)
}
