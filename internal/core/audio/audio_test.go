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

package audio_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/audio"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	test "github.com/jaycherian/video-sentiment-analyzer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sr = audio.DefaultSampleRate

func sine(freq, amplitude, seconds float64) []float64 {
	y := make([]float64, int(seconds*sr))
	for i := range y {
		y[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sr)
	}
	return y
}

func TestMelScaleRoundTrip(t *testing.T) {
	assert.InDelta(t, 15.0, audio.HzToMel(1000), 1e-9)
	assert.InDelta(t, 3.0, audio.HzToMel(200), 1e-9)
	for _, hz := range []float64{0, 100, 999, 1000, 4000, 11025} {
		assert.InDelta(t, hz, audio.MelToHz(audio.HzToMel(hz)), 1e-6)
	}
}

func TestMelFilterBankShape(t *testing.T) {
	bank := audio.MelFilterBank(sr, audio.FrameLength, audio.MelBands)
	require.Len(t, bank, audio.MelBands)
	for m, filter := range bank {
		require.Len(t, filter, audio.FrameLength/2+1)
		var sum float64
		for _, w := range filter {
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.Greater(t, sum, 0.0, "filter %d is empty", m)
	}
}

func TestDCTOrthoOfConstant(t *testing.T) {
	c := audio.DCTOrtho([]float64{2, 2, 2, 2}, 3)
	assert.InDelta(t, 4.0, c[0], 1e-12)
	assert.InDelta(t, 0.0, c[1], 1e-12)
	assert.InDelta(t, 0.0, c[2], 1e-12)
}

func TestExtractSilence(t *testing.T) {
	f := audio.Extract(make([]float64, 2*sr), sr)
	assert.Equal(t, 2.0, f.Duration)
	assert.Equal(t, sr, f.SampleRate)
	assert.Zero(t, f.Energy)
	assert.Zero(t, f.Tempo)
	assert.Zero(t, f.ZeroCrossingRate)
	assert.Zero(t, f.SpectralCentroid)
	assert.InDelta(t, 1.0, f.SpectralFlatness, 1e-9)
	require.Len(t, f.MFCC, audio.NumMFCC)
	assert.InDelta(t, -100*math.Sqrt(audio.MelBands), f.MFCC[0], 1e-6)
	for _, c := range f.MFCC[1:] {
		assert.InDelta(t, 0.0, c, 1e-6)
	}
}

func TestExtractSine(t *testing.T) {
	f := audio.Extract(sine(440, 0.5, 5), sr)
	assert.InDelta(t, 0.5/math.Sqrt2, f.Energy, 0.01)
	assert.InDelta(t, 2*440.0/sr, f.ZeroCrossingRate, 0.002)
	assert.InDelta(t, 440.0, f.SpectralCentroid, 60)
	assert.Less(t, f.SpectralFlatness, 0.05)
	assert.Len(t, f.MFCC, audio.NumMFCC)
}

func TestSpectralFlatnessOfNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	y := make([]float64, 3*sr)
	for i := range y {
		y[i] = rng.NormFloat64() * 0.1
	}
	f := audio.Extract(y, sr)
	assert.Greater(t, f.SpectralFlatness, 0.4)
}

func TestTempoOfClickTrack(t *testing.T) {
	// One click every 22 hops is 117.45 BPM.
	period := 22 * audio.HopLength
	y := make([]float64, 10*sr)
	for i := 0; i < len(y); i += period {
		y[i] = 1
	}
	f := audio.Extract(y, sr)
	assert.InDelta(t, 60.0*sr/float64(period), f.Tempo, 0.01)
}

func TestOnsetEnvelopeLength(t *testing.T) {
	melDB := [][]float64{{0, 0}, {10, 10}, {10, 10}, {10, 10}, {10, 10}}
	env := audio.OnsetEnvelope(melDB)
	assert.Equal(t, []float64{0, 0, 0, 10, 0}, env)
}

type fakePCM struct {
	samples []float64
	err     error
}

func (f fakePCM) DecodeFloat64(context.Context, string, int) ([]float64, error) {
	return f.samples, f.err
}

func TestAnalyzerErrors(t *testing.T) {
	r := audio.NewAnalyzer(fakePCM{err: errors.New("Output file #0 does not contain any stream")}, 0, 0).
		Analyze(context.Background(), "clip.mp4", "id")
	assert.False(t, r.Ok())
	assert.ErrorContains(t, r.Err, "does not contain any stream")

	r = audio.NewAnalyzer(fakePCM{}, 0, 0).Analyze(context.Background(), "clip.mp4", "id")
	assert.ErrorIs(t, r.Err, media.ErrDecode)
}

func TestAnalyzerSetsVideoID(t *testing.T) {
	r := audio.NewAnalyzer(fakePCM{samples: sine(220, 0.2, 1)}, 0, 0).Analyze(context.Background(), "clip.mp4", "cafe0001")
	require.True(t, r.Ok())
	assert.Equal(t, "cafe0001", r.Features.VideoID)
	assert.Equal(t, sr, r.Features.SampleRate)
}

func TestAnalyzerWithFFmpeg(t *testing.T) {
	path := test.GenerateVideo(t, test.VideoSpec{Duration: 2, Audio: test.ToneAudio})
	exec, err := media.NewExecutor("ffmpeg", "ffprobe")
	require.NoError(t, err)

	r := audio.NewAnalyzer(exec, sr, 0).Analyze(context.Background(), path, "tone0001")
	require.True(t, r.Ok(), "analysis failed: %v", r.Err)
	assert.InDelta(t, 2.0, r.Features.Duration, 0.1)
	assert.Greater(t, r.Features.Energy, 0.0)
	assert.InDelta(t, 440.0, r.Features.SpectralCentroid, 150)
}
