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
	"image"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"gonum.org/v1/gonum/stat"
)

// pixels flattens an 8-bit plane into float64 values.
func pixels(g *image.Gray) []float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			out = append(out, float64(v))
		}
	}
	return out
}

// MeanStdDev returns the mean and population standard deviation of a plane.
func MeanStdDev(g *image.Gray) (float64, float64) {
	p := pixels(g)
	if len(p) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(p, nil)
}

// LaplacianVariance returns the population variance of the 4-neighbour
// Laplacian response. Borders reflect without repeating the edge pixel.
func LaplacianVariance(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	px := func(x, y int) float64 {
		return float64(g.Pix[reflect101(y, h)*g.Stride+reflect101(x, w)])
	}
	resp := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			resp = append(resp, px(x-1, y)+px(x+1, y)+px(x, y-1)+px(x, y+1)-4*px(x, y))
		}
	}
	return stat.PopVariance(resp, nil)
}

// MeanAbsDiff returns the mean absolute difference of two planes of equal
// size.
func MeanAbsDiff(a, b *image.Gray) float64 {
	ab := a.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w == 0 || h == 0 || b.Bounds().Dx() != w || b.Bounds().Dy() != h {
		return 0
	}
	var sum int
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := range ra {
			sum += abs(int(ra[x]) - int(rb[x]))
		}
	}
	return float64(sum) / float64(w*h)
}

// Measure computes the statistics of one frame. prev is the luma plane of
// the previous sampled frame, or nil for the first one.
func Measure(index int, frame *image.RGBA, prev *image.Gray) (model.FrameMetrics, *image.Gray) {
	gray := Luma(frame)
	brightness, contrast := MeanStdDev(gray)
	_, colorVariance := MeanStdDev(Saturation(frame))

	metrics := model.FrameMetrics{
		FrameIndex:    index,
		Brightness:    brightness,
		Contrast:      contrast,
		EdgeDensity:   EdgeDensity(Canny(gray, CannyLow, CannyHigh)),
		ColorVariance: colorVariance,
		BlurScore:     LaplacianVariance(gray),
	}
	if prev != nil {
		metrics.MotionScore = MeanAbsDiff(gray, prev)
	}
	return metrics, gray
}

// Summarize fills the video level aggregates from per-frame metrics. Motion
// is summed; the other values are averaged.
func Summarize(features *model.FrameFeatures) {
	n := len(features.VisualFeatures)
	features.SampledFrames = n
	features.SceneChanges = 0
	if n == 0 {
		return
	}
	var brightness, contrast, complexity, motion, blur float64
	for i, m := range features.VisualFeatures {
		brightness += m.Brightness
		contrast += m.Contrast
		complexity += m.EdgeDensity
		motion += m.MotionScore
		blur += m.BlurScore
		if i > 0 && m.MotionScore > model.SceneChangeThreshold {
			features.SceneChanges++
		}
	}
	fn := float64(n)
	features.OverallBrightness = brightness / fn
	features.OverallContrast = contrast / fn
	features.OverallComplexity = complexity / fn
	features.OverallMotion = motion
	features.OverallBlur = blur / fn
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
