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

package test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Common lavfi sources.
const (
	GraySource    = "color=c=gray"
	TestSource    = "testsrc"
	SilentAudio   = "anullsrc=r=22050:cl=mono"
	ToneAudio     = "sine=frequency=440:sample_rate=22050"
	DefaultFormat = ".mp4"
)

// VideoSpec describes a synthetic clip rendered with ffmpeg's lavfi sources.
type VideoSpec struct {
	Source   string  // lavfi video source, GraySource when empty.
	Size     string  // WxH, "64x48" when empty.
	Rate     int     // Frames per second, 10 when 0.
	Duration float64 // Seconds, 2 when 0.
	Audio    string  // lavfi audio source; no audio stream when empty.
}

// RequireFFmpeg skips the test when ffmpeg or ffprobe is not on PATH.
func RequireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

// GenerateVideo renders spec into an mp4 file inside t.TempDir and returns its
// path. The test is skipped when ffmpeg is unavailable.
func GenerateVideo(t *testing.T, spec VideoSpec) string {
	t.Helper()
	RequireFFmpeg(t)

	if spec.Source == "" {
		spec.Source = GraySource
	}
	if spec.Size == "" {
		spec.Size = "64x48"
	}
	if spec.Rate == 0 {
		spec.Rate = 10
	}
	if spec.Duration == 0 {
		spec.Duration = 2
	}

	sep := "="
	if strings.Contains(spec.Source, "=") {
		sep = ":"
	}
	duration := strconv.FormatFloat(spec.Duration, 'f', -1, 64)
	video := fmt.Sprintf("%s%ss=%s:r=%d:d=%s", spec.Source, sep, spec.Size, spec.Rate, duration)

	out := filepath.Join(t.TempDir(), "clip"+DefaultFormat)
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-f", "lavfi", "-i", video}
	if spec.Audio != "" {
		args = append(args, "-f", "lavfi", "-t", duration, "-i", spec.Audio, "-c:a", "aac", "-shortest")
	}
	args = append(args, "-c:v", "mpeg4", "-pix_fmt", "yuv420p", out)

	cmd := exec.Command("ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to render test clip: %v: %s", err, output)
	}
	return out
}

// WriteFile writes data to a file inside t.TempDir and returns its path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
