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

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// zcrThreshold treats samples this close to zero as exactly zero.
const zcrThreshold = 1e-10

// Extract computes every audio feature of a mono signal. y must not be
// empty.
func Extract(y []float64, sampleRate int) *model.AudioFeatures {
	mag := MagnitudeSpectrogram(y)
	power := squared(mag)
	melDB := PowerToDB(MelSpectrogram(power, MelFilterBank(sampleRate, FrameLength, MelBands)), TopDB)

	return &model.AudioFeatures{
		Duration:         float64(len(y)) / float64(sampleRate),
		SampleRate:       sampleRate,
		Energy:           RMS(y),
		Tempo:            Tempo(melDB, sampleRate),
		ZeroCrossingRate: ZeroCrossingRate(y),
		SpectralFlatness: SpectralFlatness(power),
		MFCC:             MFCC(melDB, NumMFCC),
		SpectralCentroid: SpectralCentroid(mag, sampleRate),
	}
}

// RMS returns the mean over frames of the root mean square of each
// zero-padded, unwindowed frame.
func RMS(y []float64) float64 {
	frames := centeredFrames(y, FrameLength, HopLength, padZero)
	values := make([]float64, len(frames))
	for t, frame := range frames {
		values[t] = math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
	}
	return stat.Mean(values, nil)
}

// ZeroCrossingRate returns the mean over edge-padded frames of the fraction
// of samples whose sign differs from the previous sample. Zero counts as
// positive.
func ZeroCrossingRate(y []float64) float64 {
	frames := centeredFrames(y, FrameLength, HopLength, padEdge)
	values := make([]float64, len(frames))
	for t, frame := range frames {
		crossings := 0
		prev := negative(frame[0])
		for _, v := range frame[1:] {
			cur := negative(v)
			if cur != prev {
				crossings++
			}
			prev = cur
		}
		values[t] = float64(crossings) / float64(len(frame))
	}
	return stat.Mean(values, nil)
}

func negative(v float64) bool {
	return math.Abs(v) > zcrThreshold && v < 0
}

// SpectralFlatness returns the mean over frames of the ratio of geometric
// to arithmetic mean of the power spectrum, with power floored at 1e-10.
func SpectralFlatness(power [][]float64) float64 {
	values := make([]float64, len(power))
	for t, row := range power {
		var logSum, sum float64
		for _, p := range row {
			p = math.Max(powerAmin, p)
			logSum += math.Log(p)
			sum += p
		}
		n := float64(len(row))
		values[t] = math.Exp(logSum/n) / (sum / n)
	}
	return stat.Mean(values, nil)
}

// SpectralCentroid returns the mean over frames of the magnitude-weighted
// mean frequency. Silent frames contribute 0.
func SpectralCentroid(mag [][]float64, sampleRate int) float64 {
	freqs := FFTFrequencies(sampleRate, FrameLength)
	values := make([]float64, len(mag))
	for t, row := range mag {
		total := floats.Sum(row)
		if total <= 0 {
			continue
		}
		values[t] = floats.Dot(freqs, row) / total
	}
	return stat.Mean(values, nil)
}

// MFCC returns the time average of the first n cepstral coefficients of a
// dB-scaled mel spectrogram.
func MFCC(melDB [][]float64, n int) []float64 {
	mean := make([]float64, n)
	if len(melDB) == 0 {
		return mean
	}
	for _, row := range melDB {
		floats.Add(mean, DCTOrtho(row, n))
	}
	floats.Scale(1/float64(len(melDB)), mean)
	return mean
}
