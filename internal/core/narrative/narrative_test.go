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

package narrative_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/narrative"
	"github.com/stretchr/testify/assert"
)

func TestSynthesizeDefaults(t *testing.T) {
	failed := errors.New("decode failed")
	got := narrative.Synthesize(model.FrameErr(failed), model.AudioErr(failed), "0badc0de")

	want := "The video maintains balanced, natural lighting with a brightness score of 128.0. " +
		"with moderate contrast and balanced visual elements (contrast: 50.0). " +
		"The scene maintains moderate visual complexity with balanced detail levels (complexity: 0.500). " +
		"The scene is extremely static with virtually no movement (motion score: 0.0). " +
		"The video maintains a completely consistent scene throughout. " +
		"The video has softer, more artistic visual quality (blur score: 0.0). " +
		"The audio is relatively quiet and subdued (energy: 0.500). " +
		"with moderate tempo at 120.0 BPM. " +
		"This is a very short video (5.0s) for snapshot analysis. " +
		"Video ID: 0badc0de - This analysis is uniquely generated based on the video's specific characteristics.."
	assert.Equal(t, want, got)
}

func TestSynthesizeUpperTiers(t *testing.T) {
	frames := model.FrameOk(&model.FrameFeatures{
		OverallBrightness: 200,
		OverallContrast:   90,
		OverallComplexity: 0.9,
		OverallMotion:     75.3,
		SceneChanges:      12,
		OverallBlur:       1500,
	})
	audio := model.AudioOk(&model.AudioFeatures{Energy: 0.95, Tempo: 190, Duration: 45})
	got := narrative.Synthesize(frames, audio, "abc")

	for _, phrase := range []string{
		"exceptionally bright, vibrant lighting with a brightness score of 200.0",
		"extremely high contrast",
		"complexity: 0.900",
		"extremely high movement and dynamic activity throughout (motion score: 75.3)",
		"extremely dynamic scene transitions with 12 significant changes",
		"extremely sharp, crisp imagery",
		"extremely energetic and dynamic with an energy level of 0.950",
		"extremely fast-paced rhythmic elements at 190.0 BPM",
		"extended video (45.0s)",
	} {
		assert.Contains(t, got, phrase)
	}
}

func TestSynthesizeTierBoundaries(t *testing.T) {
	// Thresholds are strict: a value equal to a floor falls to the tier below.
	frames := model.FrameOk(&model.FrameFeatures{OverallBrightness: 150, OverallMotion: 15, SceneChanges: 1, OverallBlur: 100})
	audio := model.AudioOk(&model.AudioFeatures{Energy: 0.3, Tempo: 60, Duration: 15})
	got := narrative.Synthesize(frames, audio, "abc")

	assert.Contains(t, got, "balanced, natural lighting")
	assert.Contains(t, got, "minimal movement with mostly static content")
	assert.Contains(t, got, "some scene variation with 1 change(s)")
	assert.Contains(t, got, "softer, more artistic")
	assert.Contains(t, got, "extremely quiet with minimal energy")
	assert.Contains(t, got, "extremely slow, ambient pacing")
	assert.Contains(t, got, "brief video clip (15.0s)")
}

func TestSynthesizeIsPure(t *testing.T) {
	frames := model.FrameOk(&model.FrameFeatures{OverallBrightness: 97.3, OverallContrast: 33, OverallMotion: 8.5})
	audio := model.AudioOk(&model.AudioFeatures{Energy: 0.02, Tempo: 99.4, Duration: 3})
	first := narrative.Synthesize(frames, audio, "feedbeef")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, narrative.Synthesize(frames, audio, "feedbeef"))
	}
	assert.Equal(t, 10, strings.Count(first, ". ")+1)
}
