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

// Package vision computes per-frame statistics of sampled video frames and
// aggregates them into the frame features of a video.
//
// The color conversions, edge detector and Laplacian reproduce the 8-bit
// integer arithmetic used by common computer vision libraries, so the scores
// stay comparable with values produced by those tools.
package vision

import (
	"image"
	"image/draw"
)

// Fixed-point luma weights (0.299, 0.587, 0.114) scaled by 2^14.
const (
	lumaShift = 14
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
)

// hsvShift is the fixed-point precision of the saturation division table.
const hsvShift = 12

// satDiv[v] = round(255 * 2^12 / v), satDiv[0] = 0.
var satDiv = func() [256]int {
	var t [256]int
	for v := 1; v < 256; v++ {
		t[v] = int((float64(255<<hsvShift))/float64(v) + 0.5)
	}
	return t
}()

// ToRGBA returns img as *image.RGBA, converting when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Luma converts an RGBA frame to 8-bit gray.
func Luma(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := 0; x < w; x++ {
			r, g, bl := int(src[x*4]), int(src[x*4+1]), int(src[x*4+2])
			dst[x] = uint8((r*lumaR + g*lumaG + bl*lumaB + 1<<(lumaShift-1)) >> lumaShift)
		}
	}
	return gray
}

// Saturation returns the 8-bit HSV saturation channel of an RGBA frame.
func Saturation(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	sat := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := sat.Pix[y*sat.Stride : y*sat.Stride+w]
		for x := 0; x < w; x++ {
			r, g, bl := int(src[x*4]), int(src[x*4+1]), int(src[x*4+2])
			v := max(r, g, bl)
			diff := v - min(r, g, bl)
			dst[x] = uint8((diff*satDiv[v] + 1<<(hsvShift-1)) >> hsvShift)
		}
	}
	return sat
}
