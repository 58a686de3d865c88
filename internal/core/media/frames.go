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
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

// SampleStride returns the decode stride that spreads at most limit samples
// over total frames. It is never below 1.
func SampleStride(total int, limit int) int {
	if limit <= 0 {
		return 1
	}
	return max(1, total/limit)
}

// SampleFrames decodes every stride-th frame of the first video stream,
// starting with frame 0, and stops after limit frames. Frames are returned in
// stream order at the coded size given by info; container rotation is
// ignored.
//
// Frames are streamed from ffmpeg's stdout one at a time so only the sampled
// frames are held in memory.
func (e *Executor) SampleFrames(ctx context.Context, path string, info *VideoInfo, stride int, limit int) ([]*image.RGBA, error) {
	if info == nil || info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: unknown frame size", ErrDecode)
	}
	if stride < 1 {
		stride = 1
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", stride),
		"-fps_mode", "vfr",
		"-frames:v", strconv.Itoa(limit),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
	slog.Debug("sampling frames", "path", path, "stride", stride, "limit", limit)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create stdout pipe: %w", ErrDecode, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %w", ErrDecode, err)
	}

	frameSize := info.Width * info.Height * 4
	frames := make([]*image.RGBA, 0, limit)
	var readErr error
	for len(frames) < limit {
		img := image.NewRGBA(image.Rect(0, 0, info.Width, info.Height))
		if _, err := io.ReadFull(stdout, img.Pix[:frameSize]); err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
		frames = append(frames, img)
	}
	// Drain so ffmpeg is never blocked on a full pipe when it exits.
	_, _ = io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: ffmpeg interrupted: %w", ErrDecode, ctx.Err())
		}
		return nil, fmt.Errorf("%w: ffmpeg failed: %w: %s", ErrDecode, err, lastLine(stderr.String()))
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: truncated frame: %w", ErrDecode, readErr)
	}
	return frames, nil
}
