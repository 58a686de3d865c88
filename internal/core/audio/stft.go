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

// Package audio extracts spectral statistics from the audio track of a video:
// RMS energy, tempo, zero-crossing rate, spectral flatness, spectral centroid
// and 13 MFCCs.
//
// All features share one framing: 2048-sample frames, a hop of 512 samples
// and centered frames, so every feature has 1 + len(y)/512 frames.
package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Framing parameters shared by every feature.
const (
	FrameLength = 2048
	HopLength   = 512
)

type padMode int

const (
	padZero padMode = iota // zeros beyond the signal
	padEdge                // repeat the first and last sample
)

// centeredFrames slices y into overlapping frames centered on multiples of
// the hop. The signal is padded by half a frame on both sides.
func centeredFrames(y []float64, frameLength, hop int, mode padMode) [][]float64 {
	half := frameLength / 2
	padded := make([]float64, len(y)+2*half)
	copy(padded[half:], y)
	if mode == padEdge && len(y) > 0 {
		for i := 0; i < half; i++ {
			padded[i] = y[0]
			padded[len(padded)-1-i] = y[len(y)-1]
		}
	}
	n := 1 + (len(padded)-frameLength)/hop
	frames := make([][]float64, n)
	for t := range frames {
		frames[t] = padded[t*hop : t*hop+frameLength]
	}
	return frames
}

// hannPeriodic returns the periodic Hann window used for spectral analysis.
func hannPeriodic(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// MagnitudeSpectrogram returns |STFT(y)| as frames × (FrameLength/2 + 1)
// bins, using a periodic Hann window and zero-padded centered frames.
func MagnitudeSpectrogram(y []float64) [][]float64 {
	window := hannPeriodic(FrameLength)
	frames := centeredFrames(y, FrameLength, HopLength, padZero)
	bins := FrameLength/2 + 1

	spec := make([][]float64, len(frames))
	buf := make([]float64, FrameLength)
	for t, frame := range frames {
		for i, v := range frame {
			buf[i] = v * window[i]
		}
		coeffs := fft.FFTReal(buf)
		row := make([]float64, bins)
		for k := range row {
			row[k] = cmplx.Abs(coeffs[k])
		}
		spec[t] = row
	}
	return spec
}

// FFTFrequencies returns the center frequency of every STFT bin.
func FFTFrequencies(sampleRate int, nFFT int) []float64 {
	bins := nFFT/2 + 1
	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * float64(sampleRate) / float64(nFFT)
	}
	return freqs
}

// squared returns the element-wise square of a spectrogram.
func squared(spec [][]float64) [][]float64 {
	out := make([][]float64, len(spec))
	for t, row := range spec {
		sq := make([]float64, len(row))
		for k, v := range row {
			sq[k] = v * v
		}
		out[t] = sq
	}
	return out
}
