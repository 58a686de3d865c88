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

package vision

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"github.com/nfnt/resize"
)

// FrameSource probes a video and decodes sampled frames. *media.Executor
// implements it.
type FrameSource interface {
	Probe(ctx context.Context, path string) (*media.VideoInfo, error)
	SampleFrames(ctx context.Context, path string, info *media.VideoInfo, stride int, limit int) ([]*image.RGBA, error)
}

// Analyzer produces the frame features of a video.
type Analyzer struct {
	source   FrameSource
	maxWidth int
	timeout  time.Duration
}

// NewAnalyzer creates a frame analyzer. Frames wider than maxWidth are
// downscaled before measuring; 0 disables downscaling. A zero timeout leaves
// the caller's deadline in charge.
func NewAnalyzer(source FrameSource, maxWidth int, timeout time.Duration) *Analyzer {
	return &Analyzer{source: source, maxWidth: maxWidth, timeout: timeout}
}

// Analyze samples at most model.MaxSampledFrames frames evenly from the
// video and measures them. Any probe or decode failure, or a video without
// decodable frames, is returned as the error variant of the result.
func (a *Analyzer) Analyze(ctx context.Context, path string, videoID string) model.FrameResult {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	info, err := a.source.Probe(ctx, path)
	if err != nil {
		return model.FrameErr(fmt.Errorf("frame analysis: %w", err))
	}

	stride := media.SampleStride(info.FrameCount, model.MaxSampledFrames)
	frames, err := a.source.SampleFrames(ctx, path, info, stride, model.MaxSampledFrames)
	if err != nil {
		return model.FrameErr(fmt.Errorf("frame analysis: %w", err))
	}
	if len(frames) == 0 {
		return model.FrameErr(fmt.Errorf("frame analysis: %w: no frames decoded", media.ErrDecode))
	}
	if len(frames) > model.MaxSampledFrames {
		frames = frames[:model.MaxSampledFrames]
	}

	features := &model.FrameFeatures{
		VideoID:        videoID,
		FrameCount:     info.FrameCount,
		FPS:            info.FPS,
		VisualFeatures: make([]model.FrameMetrics, 0, len(frames)),
	}
	if info.FPS > 0 {
		features.Duration = float64(info.FrameCount) / info.FPS
	}

	var prev *image.Gray
	for i, frame := range frames {
		var m model.FrameMetrics
		m, prev = Measure(i, a.scale(frame), prev)
		features.VisualFeatures = append(features.VisualFeatures, m)
	}
	Summarize(features)

	slog.Debug("frames analyzed", "video_id", videoID, "sampled", features.SampledFrames, "stride", stride)
	return model.FrameOk(features)
}

func (a *Analyzer) scale(frame *image.RGBA) *image.RGBA {
	if a.maxWidth <= 0 || frame.Bounds().Dx() <= a.maxWidth {
		return frame
	}
	return ToRGBA(resize.Resize(uint(a.maxWidth), 0, frame, resize.Bilinear))
}
