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

package speech_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/speech"
	test "github.com/jaycherian/video-sentiment-analyzer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = speech.DefaultSampleRate

// calibrationSamples is the number of samples consumed by a 0.5 s
// calibration: seven whole 1024-sample chunks.
const calibrationSamples = 7 * speech.ChunkSize

func tone(amplitude float64, seconds float64) []int16 {
	out := make([]int16, int(seconds*rate))
	for i := range out {
		out[i] = int16(amplitude * math.Sin(2*math.Pi*300*float64(i)/rate))
	}
	return out
}

type fakePCM struct {
	samples []int16
	err     error
}

func (f fakePCM) DecodePCM16(context.Context, string, int) ([]int16, error) {
	return f.samples, f.err
}

func TestChunkRMS(t *testing.T) {
	assert.Zero(t, speech.ChunkRMS(nil))
	assert.Equal(t, 3.0, speech.ChunkRMS([]int16{3, -3, 3, -3}))
	assert.Equal(t, 2.0, speech.ChunkRMS([]int16{1, 2, 3}))
}

func TestCalibrateSilence(t *testing.T) {
	threshold, consumed := speech.Calibrate(make([]int16, 2*rate), rate, 0.5)
	assert.Equal(t, calibrationSamples, consumed)
	want := speech.InitialEnergyThreshold * math.Pow(0.15, 7*float64(speech.ChunkSize)/rate)
	assert.InDelta(t, want, threshold, 1e-9)
}

func TestCalibrateShortAudio(t *testing.T) {
	_, consumed := speech.Calibrate(make([]int16, 1500), rate, 0.5)
	assert.Equal(t, 1500, consumed)
}

func TestExtractTranscript(t *testing.T) {
	samples := tone(10000, 2)
	fake := &test.FakeTranscriber{Text: "hello world"}
	r := speech.NewExtractor(fakePCM{samples: samples}, fake, 0, 0, time.Second).
		Extract(context.Background(), "clip.mp4", "abcd1234")

	assert.Equal(t, model.SpeechResult{VideoID: "abcd1234", ExtractedText: "hello world", Confidence: 0.8, HasSpeech: true}, r)
	require.Equal(t, 1, fake.Calls())

	wav := fake.LastAudio()
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Len(t, wav, 44+2*(len(samples)-calibrationSamples))
}

func TestExtractQuietSpeechReachesService(t *testing.T) {
	for _, amplitude := range []float64{700, 1200, 10000} {
		t.Run(fmt.Sprintf("amplitude %v", amplitude), func(t *testing.T) {
			samples := tone(amplitude, 2)
			fake := &test.FakeTranscriber{Text: "hello world"}
			r := speech.NewExtractor(fakePCM{samples: samples}, fake, 0, 0, 0).
				Extract(context.Background(), "clip.mp4", "abcd1234")

			require.Equal(t, 1, fake.Calls())
			assert.Equal(t, "hello world", r.ExtractedText)
			assert.True(t, r.HasSpeech)
			assert.Len(t, fake.LastAudio(), 44+2*(len(samples)-calibrationSamples))
		})
	}
}

func TestExtractSilenceIsSentToService(t *testing.T) {
	fake := &test.FakeTranscriber{Err: speech.ErrNoSpeech}
	r := speech.NewExtractor(fakePCM{samples: make([]int16, 3*rate)}, fake, 0, 0, 0).
		Extract(context.Background(), "clip.mp4", "abcd1234")

	assert.Equal(t, model.SpeechResult{VideoID: "abcd1234", ExtractedText: model.NoSpeechText}, r)
	assert.Equal(t, 1, fake.Calls())
}

func TestExtractOutcomes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want model.SpeechResult
	}{
		{"no speech", speech.ErrNoSpeech, model.SpeechResult{VideoID: "v", ExtractedText: model.NoSpeechText}},
		{"unavailable", speech.ErrServiceUnavailable, model.SpeechResult{VideoID: "v", ExtractedText: model.ServiceUnavailableText}},
		{"other", errors.New("boom"), model.SpeechResult{ExtractedText: model.SpeechErrorText}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &test.FakeTranscriber{Err: tc.err}
			r := speech.NewExtractor(fakePCM{samples: tone(10000, 1)}, fake, 0, 0, 0).
				Extract(context.Background(), "clip.mp4", "v")
			assert.Equal(t, tc.want, r)
		})
	}
}

func TestExtractDecodeError(t *testing.T) {
	r := speech.NewExtractor(fakePCM{err: media.ErrDecode}, &test.FakeTranscriber{}, 0, 0, 0).
		Extract(context.Background(), "clip.mp4", "v")
	assert.Equal(t, model.SpeechResult{ExtractedText: model.SpeechErrorText}, r)
}

type blockingTranscriber struct{}

func (blockingTranscriber) Transcribe(ctx context.Context, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestExtractTimeoutIsUnavailable(t *testing.T) {
	r := speech.NewExtractor(fakePCM{samples: tone(10000, 1)}, blockingTranscriber{}, 0, 0, 20*time.Millisecond).
		Extract(context.Background(), "clip.mp4", "v")
	assert.Equal(t, model.ServiceUnavailableText, r.ExtractedText)
	assert.Equal(t, "v", r.VideoID)
}

func TestNilTranscriberIsUnavailable(t *testing.T) {
	r := speech.NewExtractor(fakePCM{samples: tone(10000, 1)}, nil, 0, 0, 0).
		Extract(context.Background(), "clip.mp4", "v")
	assert.Equal(t, model.ServiceUnavailableText, r.ExtractedText)
}

func TestHTTPTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "audio.wav", header.Filename)
		assert.Equal(t, "RIFF", string(data[:4]))
		_, _ = w.Write([]byte(`{"text": "  good morning "}`))
	}))
	defer srv.Close()

	tr, err := speech.NewHTTPTranscriber(srv.URL, "secret", srv.Client())
	require.NoError(t, err)
	text, err := tr.Transcribe(context.Background(), media.EncodeWAV(tone(5000, 0.1), rate))
	require.NoError(t, err)
	assert.Equal(t, "good morning", text)
}

func TestHTTPTranscriberFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			_, _ = w.Write([]byte(`{"text": ""}`))
		default:
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	tr, err := speech.NewHTTPTranscriber(srv.URL+"/empty", "", srv.Client())
	require.NoError(t, err)
	_, err = tr.Transcribe(context.Background(), []byte("RIFF"))
	assert.ErrorIs(t, err, speech.ErrNoSpeech)

	tr, err = speech.NewHTTPTranscriber(srv.URL+"/busy", "", srv.Client())
	require.NoError(t, err)
	_, err = tr.Transcribe(context.Background(), []byte("RIFF"))
	assert.ErrorIs(t, err, speech.ErrServiceUnavailable)
	assert.ErrorContains(t, err, "overloaded")

	_, err = speech.NewHTTPTranscriber("", "", nil)
	assert.Error(t, err)
}

func TestExtractorWithFFmpeg(t *testing.T) {
	path := test.GenerateVideo(t, test.VideoSpec{Duration: 2, Audio: test.SilentAudio})
	exec, err := media.NewExecutor("ffmpeg", "ffprobe")
	require.NoError(t, err)

	fake := &test.FakeTranscriber{Err: speech.ErrNoSpeech}
	r := speech.NewExtractor(exec, fake, 0, 0, 0).Extract(context.Background(), path, "silent01")
	assert.Equal(t, model.NoSpeechText, r.ExtractedText)
	require.Equal(t, 1, fake.Calls())
	assert.Equal(t, "RIFF", string(fake.LastAudio()[:4]))
}
