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

package media_test

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	test "github.com/jaycherian/video-sentiment-analyzer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T) *media.Executor {
	t.Helper()
	test.RequireFFmpeg(t)
	e, err := media.NewExecutor("ffmpeg", "ffprobe")
	require.NoError(t, err)
	return e
}

func TestParseFrameRate(t *testing.T) {
	assert.Equal(t, 30.0, media.ParseFrameRate("30/1"))
	assert.InDelta(t, 29.97, media.ParseFrameRate("30000/1001"), 0.001)
	assert.Zero(t, media.ParseFrameRate("0/0"))
	assert.Zero(t, media.ParseFrameRate("abc"))
	assert.Equal(t, 25.0, media.ParseFrameRate("25"))
}

func TestSampleStride(t *testing.T) {
	assert.Equal(t, 1, media.SampleStride(0, 25))
	assert.Equal(t, 1, media.SampleStride(24, 25))
	assert.Equal(t, 1, media.SampleStride(49, 25))
	assert.Equal(t, 2, media.SampleStride(50, 25))
	assert.Equal(t, 400, media.SampleStride(10000, 25))
}

func TestEncodeWAV(t *testing.T) {
	wav := media.EncodeWAV([]int16{0, 1, -1, math.MaxInt16}, 16000)
	require.Len(t, wav, 44+8)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, []int16{0, 1, -1, math.MaxInt16}, media.BytesToInt16(wav[44:]))
}

func TestBytesToFloat64DropsPartialSample(t *testing.T) {
	buf := make([]byte, 8*2+3)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(0.5))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(-0.25))
	assert.Equal(t, []float64{0.5, -0.25}, media.BytesToFloat64(buf))
	assert.Nil(t, media.BytesToFloat64([]byte{1, 2}))
}

func TestProbeAndSample(t *testing.T) {
	e := newExecutor(t)
	path := test.GenerateVideo(t, test.VideoSpec{Rate: 10, Duration: 3, Audio: test.SilentAudio})

	info, err := e.Probe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
	assert.InDelta(t, 10.0, info.FPS, 0.01)
	assert.Equal(t, 30, info.FrameCount)
	assert.True(t, info.HasAudio)

	frames, err := e.SampleFrames(context.Background(), path, info, media.SampleStride(info.FrameCount, 25), 25)
	require.NoError(t, err)
	assert.Len(t, frames, 25)
	assert.Equal(t, 64, frames[0].Bounds().Dx())
}

func TestDecodeAudio(t *testing.T) {
	e := newExecutor(t)
	path := test.GenerateVideo(t, test.VideoSpec{Duration: 1, Audio: test.ToneAudio})

	samples, err := e.DecodeFloat64(context.Background(), path, 22050)
	require.NoError(t, err)
	assert.InDelta(t, 22050, len(samples), 2048)

	pcm, err := e.DecodePCM16(context.Background(), path, 16000)
	require.NoError(t, err)
	assert.InDelta(t, 16000, len(pcm), 2048)
}

func TestDecodeWithoutAudioStream(t *testing.T) {
	e := newExecutor(t)
	path := test.GenerateVideo(t, test.VideoSpec{Duration: 1})

	_, err := e.DecodeFloat64(context.Background(), path, 22050)
	assert.ErrorIs(t, err, media.ErrDecode)
}

func TestProbeCorruptFile(t *testing.T) {
	e := newExecutor(t)
	path := test.WriteFile(t, "broken.mp4", []byte("this is not a video"))

	_, err := e.Probe(context.Background(), path)
	assert.ErrorIs(t, err, media.ErrDecode)
}
