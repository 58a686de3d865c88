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
	"math"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// Tempo estimation parameters.
const (
	StartBPM      = 120.0
	MaxBPM        = 320.0
	tempoStdBPM   = 1.0
	acSizeSeconds = 8.0
	onsetLag      = 1
)

// OnsetEnvelope returns the onset strength per frame: the median over mel
// bands of the positive dB increase from the previous frame. The envelope is
// shifted right to compensate for frame centering and has one value per
// input frame.
func OnsetEnvelope(melDB [][]float64) []float64 {
	n := len(melDB)
	env := make([]float64, n)
	shift := onsetLag + FrameLength/(2*HopLength)
	if n <= onsetLag {
		return env
	}
	diffs := make([]float64, 0, MelBands)
	for t := onsetLag; t < n; t++ {
		out := t - onsetLag + shift
		if out >= n {
			break
		}
		diffs = diffs[:0]
		for m, v := range melDB[t] {
			diffs = append(diffs, math.Max(0, v-melDB[t-onsetLag][m]))
		}
		env[out] = median(diffs)
	}
	return env
}

// Tempo estimates the tempo in BPM from a dB mel spectrogram. It returns 0
// when the onset envelope carries no energy.
//
// Logic Flow:
//  1. Build the onset envelope.
//  2. For every frame, autocorrelate an 8 second Hann-weighted window of the
//     envelope around it and normalize by the zero-lag value.
//  3. Average the autocorrelations over time.
//  4. Pick the lag maximizing log1p(1e6·ac) plus a log-normal prior centred
//     on 120 BPM, ignoring lags faster than 320 BPM.
func Tempo(melDB [][]float64, sampleRate int) float64 {
	env := OnsetEnvelope(melDB)
	if !anyNonZero(env) {
		return 0
	}
	win := int(acSizeSeconds * float64(sampleRate) / float64(HopLength))
	if win < 2 {
		return 0
	}
	tg := meanTempogram(env, win)

	best, bestScore := 0, math.Inf(-1)
	for k := 1; k < win; k++ {
		bpm := 60 * float64(sampleRate) / float64(HopLength*k)
		if bpm >= MaxBPM {
			continue
		}
		prior := (math.Log2(bpm) - math.Log2(StartBPM)) / tempoStdBPM
		score := math.Log1p(1e6*tg[k]) - 0.5*prior*prior
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if best == 0 {
		return 0
	}
	return 60 * float64(sampleRate) / float64(HopLength*best)
}

// meanTempogram returns the time-averaged, per-frame normalized local
// autocorrelation of env over windows of win frames. The envelope is padded
// with linear ramps to zero so every frame gets a centered window.
func meanTempogram(env []float64, win int) []float64 {
	n := len(env)
	half := win / 2
	padded := make([]float64, n+2*half)
	copy(padded[half:], env)
	first, last := env[0], env[n-1]
	for i := 0; i < half; i++ {
		padded[i] = first * float64(i) / float64(half)
		padded[len(padded)-1-i] = last * float64(i) / float64(half)
	}

	window := hannPeriodic(win)
	nfft := 1
	for nfft < 2*win-1 {
		nfft <<= 1
	}
	buf := make([]float64, nfft)
	mean := make([]float64, win)

	for t := 0; t < n; t++ {
		for i := range buf {
			buf[i] = 0
		}
		for i := 0; i < win; i++ {
			buf[i] = padded[t+i] * window[i]
		}
		spec := fft.FFTReal(buf)
		for k, c := range spec {
			spec[k] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
		}
		ac := fft.IFFT(spec)
		peak := 0.0
		for k := 0; k < win; k++ {
			peak = math.Max(peak, math.Abs(real(ac[k])))
		}
		if peak < math.SmallestNonzeroFloat64 {
			peak = 1
		}
		for k := 0; k < win; k++ {
			mean[k] += real(ac[k]) / peak
		}
	}
	for k := range mean {
		mean[k] /= float64(n)
	}
	return mean
}

func anyNonZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}
