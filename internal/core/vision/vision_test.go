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

package vision_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/vision"
	test "github.com/jaycherian/video-sentiment-analyzer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func verticalStep(w, h, at int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := at; x < w; x++ {
			g.Pix[y*g.Stride+x] = 255
		}
	}
	return g
}

func TestLuma(t *testing.T) {
	cases := map[string]struct {
		in   color.RGBA
		want uint8
	}{
		"white": {color.RGBA{255, 255, 255, 255}, 255},
		"black": {color.RGBA{0, 0, 0, 255}, 0},
		"gray":  {color.RGBA{128, 128, 128, 255}, 128},
		"red":   {color.RGBA{255, 0, 0, 255}, 76},
		"green": {color.RGBA{0, 255, 0, 255}, 150},
		"blue":  {color.RGBA{0, 0, 255, 255}, 29},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			g := vision.Luma(solid(2, 2, tc.in))
			assert.Equal(t, tc.want, g.GrayAt(1, 1).Y)
		})
	}
}

func TestSaturation(t *testing.T) {
	assert.Equal(t, uint8(0), vision.Saturation(solid(1, 1, color.RGBA{90, 90, 90, 255})).GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), vision.Saturation(solid(1, 1, color.RGBA{255, 0, 0, 255})).GrayAt(0, 0).Y)
	assert.Equal(t, uint8(127), vision.Saturation(solid(1, 1, color.RGBA{200, 100, 100, 255})).GrayAt(0, 0).Y)
}

func TestCannyUniformHasNoEdges(t *testing.T) {
	g := vision.Luma(solid(16, 16, color.RGBA{128, 128, 128, 255}))
	assert.Zero(t, vision.EdgeDensity(vision.Canny(g, vision.CannyLow, vision.CannyHigh)))
}

func TestCannyVerticalStep(t *testing.T) {
	edges := vision.Canny(verticalStep(10, 10, 5), vision.CannyLow, vision.CannyHigh)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := uint8(0)
			if x == 4 {
				want = 255
			}
			assert.Equal(t, want, edges.GrayAt(x, y).Y, "pixel %d,%d", x, y)
		}
	}
	assert.InDelta(t, 25.5, vision.EdgeDensity(edges), 1e-9)
}

func TestLaplacianVariance(t *testing.T) {
	assert.Zero(t, vision.LaplacianVariance(vision.Luma(solid(8, 8, color.RGBA{40, 40, 40, 255}))))
	assert.Greater(t, vision.LaplacianVariance(verticalStep(8, 8, 4)), 0.0)
	assert.Zero(t, vision.LaplacianVariance(image.NewGray(image.Rect(0, 0, 1, 1))))
}

func TestMeasureAndSummarize(t *testing.T) {
	dark := solid(8, 8, color.RGBA{0, 0, 0, 255})
	bright := solid(8, 8, color.RGBA{255, 255, 255, 255})

	m0, prev := vision.Measure(0, dark, nil)
	m1, _ := vision.Measure(1, bright, prev)
	assert.Zero(t, m0.MotionScore)
	assert.Equal(t, 255.0, m1.MotionScore)
	assert.Zero(t, m1.Contrast)

	features := &model.FrameFeatures{VisualFeatures: []model.FrameMetrics{m0, m1, {FrameIndex: 2, MotionScore: 15}}}
	vision.Summarize(features)
	assert.Equal(t, 3, features.SampledFrames)
	assert.Equal(t, 1, features.SceneChanges, "a motion of exactly 15 is not a scene change")
	assert.Equal(t, 270.0, features.OverallMotion)
	assert.InDelta(t, 85.0, features.OverallBrightness, 1e-9)
}

// fakeSource serves a fixed probe result and a fixed number of gray frames.
type fakeSource struct {
	info       *media.VideoInfo
	frames     int
	probeErr   error
	gotStride  int
	gotLimit   int
	sampleErr  error
	frameColor color.RGBA
}

func (f *fakeSource) Probe(context.Context, string) (*media.VideoInfo, error) {
	return f.info, f.probeErr
}

func (f *fakeSource) SampleFrames(_ context.Context, _ string, info *media.VideoInfo, stride int, limit int) ([]*image.RGBA, error) {
	f.gotStride, f.gotLimit = stride, limit
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	out := make([]*image.RGBA, f.frames)
	for i := range out {
		out[i] = solid(info.Width, info.Height, f.frameColor)
	}
	return out, nil
}

func TestAnalyzerCapsSampledFrames(t *testing.T) {
	src := &fakeSource{
		info:       &media.VideoInfo{Width: 8, Height: 8, FPS: 1000, FrameCount: 10000},
		frames:     40,
		frameColor: color.RGBA{128, 128, 128, 255},
	}
	r := vision.NewAnalyzer(src, 0, 0).Analyze(context.Background(), "clip.mp4", "abcd1234")
	require.True(t, r.Ok())
	assert.Equal(t, 400, src.gotStride)
	assert.Equal(t, model.MaxSampledFrames, src.gotLimit)
	assert.Equal(t, model.MaxSampledFrames, r.Features.SampledFrames)
	assert.Len(t, r.Features.VisualFeatures, model.MaxSampledFrames)
	assert.Equal(t, 10.0, r.Features.Duration)
	assert.Equal(t, "abcd1234", r.Features.VideoID)
	assert.Equal(t, 128.0, r.Features.OverallBrightness)
	assert.Zero(t, r.Features.OverallMotion)
}

func TestAnalyzerZeroFPS(t *testing.T) {
	src := &fakeSource{info: &media.VideoInfo{Width: 4, Height: 4}, frames: 1}
	r := vision.NewAnalyzer(src, 0, 0).Analyze(context.Background(), "clip.mp4", "id")
	require.True(t, r.Ok())
	assert.Zero(t, r.Features.Duration)
	assert.Equal(t, 1, src.gotStride)
}

func TestAnalyzerErrors(t *testing.T) {
	probeFail := &fakeSource{probeErr: errors.New("moov atom not found")}
	r := vision.NewAnalyzer(probeFail, 0, 0).Analyze(context.Background(), "x", "id")
	assert.False(t, r.Ok())
	assert.ErrorContains(t, r.Err, "moov atom not found")

	empty := &fakeSource{info: &media.VideoInfo{Width: 4, Height: 4, FrameCount: 3, FPS: 1}}
	r = vision.NewAnalyzer(empty, 0, 0).Analyze(context.Background(), "x", "id")
	assert.ErrorIs(t, r.Err, media.ErrDecode)
}

func TestAnalyzerDownscales(t *testing.T) {
	src := &fakeSource{info: &media.VideoInfo{Width: 64, Height: 32, FrameCount: 2, FPS: 2}, frames: 2}
	r := vision.NewAnalyzer(src, 16, 0).Analyze(context.Background(), "x", "id")
	require.True(t, r.Ok())
	assert.Equal(t, 2, r.Features.SampledFrames)
}

func TestAnalyzerTenThousandFrameVideo(t *testing.T) {
	path := test.GenerateVideo(t, test.VideoSpec{Size: "16x16", Rate: 1000, Duration: 10})
	exec, err := media.NewExecutor("ffmpeg", "ffprobe")
	require.NoError(t, err)

	r := vision.NewAnalyzer(exec, 0, 0).Analyze(context.Background(), path, "bigclip0")
	require.True(t, r.Ok(), "analysis failed: %v", r.Err)
	assert.Equal(t, 10000, r.Features.FrameCount)
	assert.Equal(t, model.MaxSampledFrames, r.Features.SampledFrames)
	assert.InDelta(t, 128.0, r.Features.OverallBrightness, 2)
	assert.Zero(t, r.Features.SceneChanges)
}

// texturedSource serves a single fine checkerboard frame.
type texturedSource struct {
	frame *image.RGBA
}

func (s texturedSource) Probe(context.Context, string) (*media.VideoInfo, error) {
	b := s.frame.Bounds()
	return &media.VideoInfo{Width: b.Dx(), Height: b.Dy(), FrameCount: 1, FPS: 1}, nil
}

func (s texturedSource) SampleFrames(context.Context, string, *media.VideoInfo, int, int) ([]*image.RGBA, error) {
	return []*image.RGBA{s.frame}, nil
}

func checkerboard(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{20, 40, 60, 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{230, 210, 190, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAnalyzerKeepsFullResolutionByDefault(t *testing.T) {
	frame := checkerboard(1280, 720, 2)
	want, _ := vision.Measure(0, frame, nil)

	r := vision.NewAnalyzer(texturedSource{frame: frame}, 0, 0).Analyze(context.Background(), "hd.mp4", "hd000001")
	require.True(t, r.Ok())
	require.Len(t, r.Features.VisualFeatures, 1)
	assert.Equal(t, want, r.Features.VisualFeatures[0])

	scaled := vision.NewAnalyzer(texturedSource{frame: frame}, 640, 0).Analyze(context.Background(), "hd.mp4", "hd000001")
	require.True(t, scaled.Ok())
	assert.NotEqual(t, want.BlurScore, scaled.Features.VisualFeatures[0].BlurScore)
}
