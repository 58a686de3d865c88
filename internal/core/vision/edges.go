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

import "image"

// Canny thresholds used for edge density.
const (
	CannyLow  = 100
	CannyHigh = 200
)

const (
	cannyShift = 15
	tg22       = 13573 // tan(22.5°) * 2^15, rounded.
)

// Edge map states.
const (
	notEdge uint8 = iota
	candidate
	edge
)

// Canny runs a Canny detector with a 3x3 Sobel aperture and the L1 gradient
// norm. It returns a gray image with edge pixels set to 255.
//
// Logic Flow:
//  1. Sobel derivatives with replicated borders.
//  2. Non-maximum suppression along the quantized gradient direction;
//     magnitudes outside the frame count as zero.
//  3. Pixels above high seed the edge set, which grows through
//     8-connected pixels that survived suppression above low.
func Canny(g *image.Gray, low int, high int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	dx, dy := sobel(g)
	mag := make([]int, w*h)
	for i := range mag {
		mag[i] = abs(dx[i]) + abs(dy[i])
	}
	at := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	stack := make([]int, 0, 64)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}
			xs, ys := dx[i], dy[i]
			ax := abs(xs)
			ay := abs(ys) << cannyShift
			tg22x := ax * tg22

			var keep bool
			switch {
			case ay < tg22x:
				keep = m > at(x-1, y) && m >= at(x+1, y)
			case ay > tg22x+(ax<<(cannyShift+1)):
				keep = m > at(x, y-1) && m >= at(x, y+1)
			default:
				s := 1
				if xs^ys < 0 {
					s = -1
				}
				keep = m > at(x-s, y-1) && m > at(x+s, y+1)
			}
			if !keep {
				continue
			}
			if m > high {
				state[i] = edge
				stack = append(stack, i)
			} else {
				state[i] = candidate
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == candidate {
					state[j] = edge
					stack = append(stack, j)
				}
			}
		}
	}

	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			if state[y*w+x] == edge {
				row[x] = 255
			}
		}
	}
	return out
}

// EdgeDensity is the sum of the edge map (255 per edge pixel) divided by the
// pixel count.
func EdgeDensity(edges *image.Gray) float64 {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	var sum int
	for y := 0; y < h; y++ {
		for _, v := range edges.Pix[y*edges.Stride : y*edges.Stride+w] {
			sum += int(v)
		}
	}
	return float64(sum) / float64(w*h)
}

// sobel returns the 3x3 x and y derivatives with replicated borders.
func sobel(g *image.Gray) ([]int, []int) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	px := func(x, y int) int {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int(g.Pix[y*g.Stride+x])
	}
	dx := make([]int, w*h)
	dy := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, t, tr := px(x-1, y-1), px(x, y-1), px(x+1, y-1)
			l, r := px(x-1, y), px(x+1, y)
			bl, bm, br := px(x-1, y+1), px(x, y+1), px(x+1, y+1)
			dx[y*w+x] = (tr + 2*r + br) - (tl + 2*l + bl)
			dy[y*w+x] = (bl + 2*bm + br) - (tl + 2*t + tr)
		}
	}
	return dx, dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
