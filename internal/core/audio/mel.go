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

	"gonum.org/v1/gonum/floats"
)

// Mel analysis parameters.
const (
	MelBands  = 128
	NumMFCC   = 13
	TopDB     = 80.0
	powerAmin = 1e-10
)

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melLinearStep = 200.0 / 3
	melMinLogHz   = 1000.0
	melMinLog     = melMinLogHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27.0

// HzToMel converts a frequency to the Slaney mel scale.
func HzToMel(hz float64) float64 {
	if hz >= melMinLogHz {
		return melMinLog + math.Log(hz/melMinLogHz)/melLogStep
	}
	return hz / melLinearStep
}

// MelToHz converts a Slaney mel value back to Hz.
func MelToHz(mel float64) float64 {
	if mel >= melMinLog {
		return melMinLogHz * math.Exp(melLogStep*(mel-melMinLog))
	}
	return mel * melLinearStep
}

// MelFilterBank builds nMels triangular filters spanning 0 Hz to Nyquist,
// each normalized to unit area (Slaney normalization).
func MelFilterBank(sampleRate int, nFFT int, nMels int) [][]float64 {
	fftFreqs := FFTFrequencies(sampleRate, nFFT)

	maxMel := HzToMel(float64(sampleRate) / 2)
	melF := make([]float64, nMels+2)
	for i := range melF {
		melF[i] = MelToHz(maxMel * float64(i) / float64(nMels+1))
	}

	bank := make([][]float64, nMels)
	for m := range bank {
		lowerWidth := melF[m+1] - melF[m]
		upperWidth := melF[m+2] - melF[m+1]
		enorm := 2.0 / (melF[m+2] - melF[m])
		row := make([]float64, len(fftFreqs))
		for k, f := range fftFreqs {
			lower := (f - melF[m]) / lowerWidth
			upper := (melF[m+2] - f) / upperWidth
			row[k] = math.Max(0, math.Min(lower, upper)) * enorm
		}
		bank[m] = row
	}
	return bank
}

// MelSpectrogram projects a power spectrogram onto the filter bank.
func MelSpectrogram(power [][]float64, bank [][]float64) [][]float64 {
	out := make([][]float64, len(power))
	for t, row := range power {
		mel := make([]float64, len(bank))
		for m, filter := range bank {
			mel[m] = floats.Dot(filter, row)
		}
		out[t] = mel
	}
	return out
}

// PowerToDB converts power values to decibels relative to 1.0 and clamps
// everything to within topDB of the global maximum.
func PowerToDB(power [][]float64, topDB float64) [][]float64 {
	out := make([][]float64, len(power))
	peak := math.Inf(-1)
	for t, row := range power {
		db := make([]float64, len(row))
		for i, v := range row {
			db[i] = 10 * math.Log10(math.Max(powerAmin, v))
		}
		if len(db) > 0 {
			peak = math.Max(peak, floats.Max(db))
		}
		out[t] = db
	}
	floor := peak - topDB
	for _, row := range out {
		for i, v := range row {
			if v < floor {
				row[i] = floor
			}
		}
	}
	return out
}

// DCTOrtho computes the first n coefficients of the orthonormal DCT-II of x.
func DCTOrtho(x []float64, n int) []float64 {
	size := float64(len(x))
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i, v := range x {
			sum += v * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*size))
		}
		scale := math.Sqrt(2 / size)
		if k == 0 {
			scale = math.Sqrt(1 / size)
		}
		out[k] = sum * scale
	}
	return out
}
