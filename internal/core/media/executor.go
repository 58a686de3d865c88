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

// Package media wraps the ffprobe and ffmpeg binaries. It is the only place
// in the service that spawns external processes, and it turns container level
// details (codecs, rotation, sample formats) into plain Go values: a
// VideoInfo, a slice of RGBA frames, or a slice of PCM samples.
//
// Logic Flow:
//  1. NewExecutor resolves both binaries once at startup.
//  2. Probe runs ffprobe with JSON output and extracts the first video stream.
//  3. SampleFrames runs ffmpeg with a select filter and reads raw RGBA frames
//     from stdout.
//  4. DecodeFloat64 / DecodePCM16 run ffmpeg to resample the first audio
//     stream to mono and read the raw samples from stdout.
//
// Every failure is wrapped with ErrDecode so callers can distinguish an
// undecodable upload from their own errors.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrDecode marks a failure to probe or decode an input file.
var ErrDecode = errors.New("media decode failed")

// Executor runs ffprobe and ffmpeg.
type Executor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewExecutor resolves the ffmpeg and ffprobe binaries. Bare names are looked
// up on PATH; paths are used as given.
//
// Inputs:
//   - ffmpeg: The ffmpeg binary name or path.
//   - ffprobe: The ffprobe binary name or path.
//
// Outputs:
//   - *Executor: A ready executor.
//   - error: Non-nil when either binary cannot be found.
func NewExecutor(ffmpeg string, ffprobe string) (*Executor, error) {
	ffmpegPath, err := exec.LookPath(ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath(ffprobe)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Executor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// output runs a binary and returns its stdout. Stderr is folded into the
// returned error so a failed decode explains itself in the logs.
func (e *Executor) output(ctx context.Context, bin string, args ...string) ([]byte, error) {
	slog.Debug("executing media tool", "cmd", bin, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s interrupted: %w", ErrDecode, bin, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s failed: %w: %s", ErrDecode, bin, err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// lastLine keeps the final non-empty stderr line, which is where ffmpeg puts
// the actual reason.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
