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

package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// pcmArgs builds the ffmpeg arguments that write the first audio stream to
// stdout as mono raw samples in the given format.
func pcmArgs(path string, sampleRate int, format string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-map", "0:a:0",
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", format,
		"pipe:1",
	}
}

// DecodeFloat64 decodes the first audio stream to mono float64 samples in
// [-1, 1] at sampleRate. A file without an audio stream is an ErrDecode.
func (e *Executor) DecodeFloat64(ctx context.Context, path string, sampleRate int) ([]float64, error) {
	out, err := e.output(ctx, e.ffmpegPath, pcmArgs(path, sampleRate, "f64le")...)
	if err != nil {
		return nil, err
	}
	samples := BytesToFloat64(out)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no audio samples decoded", ErrDecode)
	}
	return samples, nil
}

// DecodePCM16 decodes the first audio stream to mono signed 16-bit samples at
// sampleRate.
func (e *Executor) DecodePCM16(ctx context.Context, path string, sampleRate int) ([]int16, error) {
	out, err := e.output(ctx, e.ffmpegPath, pcmArgs(path, sampleRate, "s16le")...)
	if err != nil {
		return nil, err
	}
	samples := BytesToInt16(out)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no audio samples decoded", ErrDecode)
	}
	return samples, nil
}

// BytesToFloat64 reinterprets little-endian float64 data. A trailing partial
// sample is dropped.
func BytesToFloat64(data []byte) []float64 {
	n := len(data) / 8
	if n == 0 {
		return nil
	}
	samples := make([]float64, n)
	for i := range n {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples
}

// BytesToInt16 reinterprets little-endian int16 data. A trailing odd byte is
// dropped.
func BytesToInt16(data []byte) []int16 {
	n := len(data) / 2
	if n == 0 {
		return nil
	}
	samples := make([]int16, n)
	for i := range n {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
