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

// Package speech turns the audio track of a video into a transcript.
//
// Logic Flow:
//  1. The audio is decoded to 16 kHz mono 16-bit PCM.
//  2. The first half second calibrates an energy threshold against ambient
//     noise and is then discarded.
//  3. The remainder is always wrapped as WAV and sent to a Transcriber, which
//     decides whether it holds speech.
//  4. The outcome is folded into a model.SpeechResult with the fixed sentinel
//     texts for the failure cases.
package speech

import "math"

// Calibration constants of the ambient noise adjustment.
const (
	ChunkSize              = 1024
	InitialEnergyThreshold = 300.0
	energyDamping          = 0.15
	energyRatio            = 1.5
)

// ChunkRMS returns the integer RMS of 16-bit samples. An empty chunk has
// zero energy.
func ChunkRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Floor(math.Sqrt(sum / float64(len(samples))))
}

// Calibrate adapts the energy threshold to the ambient noise of the first
// duration seconds of audio. It reads whole chunks while the elapsed time
// stays within duration, moving the threshold towards 1.5 × the chunk
// energy with a damping of 0.15 per second. It returns the threshold and the
// number of samples consumed.
func Calibrate(samples []int16, sampleRate int, duration float64) (float64, int) {
	threshold := InitialEnergyThreshold
	secondsPerChunk := float64(ChunkSize) / float64(sampleRate)
	damping := math.Pow(energyDamping, secondsPerChunk)

	consumed := 0
	elapsed := 0.0
	for {
		elapsed += secondsPerChunk
		if elapsed > duration {
			break
		}
		end := min(consumed+ChunkSize, len(samples))
		energy := ChunkRMS(samples[consumed:end])
		consumed = end
		threshold = threshold*damping + energy*energyRatio*(1-damping)
	}
	return threshold, consumed
}
