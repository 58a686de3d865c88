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

// Package narrative describes a video in prose from its frame and audio
// aggregates. The text stands in for a transcript when nobody speaks, so the
// classifiers always receive non-empty input.
//
// Synthesize is pure: identical inputs give byte-identical output.
package narrative

import (
	"fmt"
	"strings"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// tier is one bucket of a metric: the clause is used when the value is above
// floor. The last tier of a ladder has no floor.
type tier struct {
	floor  float64
	format string
}

func pick(value float64, ladder []tier) string {
	for _, t := range ladder[:len(ladder)-1] {
		if value > t.floor {
			return t.format
		}
	}
	return ladder[len(ladder)-1].format
}

var brightnessTiers = []tier{
	{180, "The video exhibits exceptionally bright, vibrant lighting with a brightness score of %.1f"},
	{150, "This video features bright, well-illuminated scenes with a brightness level of %.1f"},
	{120, "The video maintains balanced, natural lighting with a brightness score of %.1f"},
	{80, "This video has a darker, more atmospheric quality with a brightness level of %.1f"},
	{0, "The video presents a very dark, moody atmosphere with a brightness score of %.1f"},
}

var contrastTiers = []tier{
	{80, "with extremely high contrast and sharp visual definition (contrast: %.1f)"},
	{60, "with high contrast and clear visual separation (contrast: %.1f)"},
	{40, "with moderate contrast and balanced visual elements (contrast: %.1f)"},
	{20, "with soft, subtle visual transitions (contrast: %.1f)"},
	{0, "with very low contrast and gentle visual blending (contrast: %.1f)"},
}

var complexityTiers = []tier{
	{0.8, "The scene contains an extremely high level of visual complexity and intricate details (complexity: %.3f)"},
	{0.6, "The scene shows high visual complexity with many textures and details (complexity: %.3f)"},
	{0.4, "The scene maintains moderate visual complexity with balanced detail levels (complexity: %.3f)"},
	{0.2, "The scene is visually simple with minimal complexity (complexity: %.3f)"},
	{0, "The scene is extremely clean and simple with very low complexity (complexity: %.3f)"},
}

var motionTiers = []tier{
	{50, "There is extremely high movement and dynamic activity throughout (motion score: %.1f)"},
	{30, "There is significant movement and active content (motion score: %.1f)"},
	{15, "There is moderate movement and some activity (motion score: %.1f)"},
	{5, "There is minimal movement with mostly static content (motion score: %.1f)"},
	{0, "The scene is extremely static with virtually no movement (motion score: %.1f)"},
}

var blurTiers = []tier{
	{1000, "The video has extremely sharp, crisp imagery (blur score: %.1f)"},
	{500, "The video features sharp, clear visuals (blur score: %.1f)"},
	{100, "The video maintains good visual clarity (blur score: %.1f)"},
	{0, "The video has softer, more artistic visual quality (blur score: %.1f)"},
}

var energyTiers = []tier{
	{0.9, "The audio is extremely energetic and dynamic with an energy level of %.3f"},
	{0.7, "The audio is highly energetic and engaging (energy: %.3f)"},
	{0.5, "The audio maintains moderate energy levels (energy: %.3f)"},
	{0.3, "The audio is relatively quiet and subdued (energy: %.3f)"},
	{0, "The audio is extremely quiet with minimal energy (energy: %.3f)"},
}

var tempoTiers = []tier{
	{180, "with extremely fast-paced rhythmic elements at %.1f BPM"},
	{140, "with fast-paced rhythmic content at %.1f BPM"},
	{100, "with moderate tempo at %.1f BPM"},
	{60, "with slow, relaxed pacing at %.1f BPM"},
	{0, "with extremely slow, ambient pacing at %.1f BPM"},
}

var durationTiers = []tier{
	{30, "This is an extended video (%.1fs) that allows for comprehensive analysis"},
	{15, "This is a medium-length video (%.1fs) suitable for detailed analysis"},
	{5, "This is a brief video clip (%.1fs) for quick analysis"},
	{0, "This is a very short video (%.1fs) for snapshot analysis"},
}

func sceneClause(changes int) string {
	switch {
	case changes > 10:
		return fmt.Sprintf("The video shows extremely dynamic scene transitions with %d significant changes", changes)
	case changes > 5:
		return fmt.Sprintf("The video has dynamic scene variation with %d scene changes", changes)
	case changes > 0:
		return fmt.Sprintf("The video shows some scene variation with %d change(s)", changes)
	default:
		return "The video maintains a completely consistent scene throughout"
	}
}

func clause(value float64, ladder []tier) string {
	return fmt.Sprintf(pick(value, ladder), value)
}

// Synthesize returns the narrative for a video. Missing modalities fall back
// to the defaults of their result accessors.
func Synthesize(frames model.FrameResult, audio model.AudioResult, videoID string) string {
	parts := []string{
		clause(frames.Brightness(), brightnessTiers),
		clause(frames.Contrast(), contrastTiers),
		clause(frames.Complexity(), complexityTiers),
		clause(frames.Motion(), motionTiers),
		sceneClause(frames.SceneChanges()),
		clause(frames.Blur(), blurTiers),
		clause(audio.Energy(), energyTiers),
		clause(audio.Tempo(), tempoTiers),
		clause(audio.Duration(), durationTiers),
		fmt.Sprintf("Video ID: %s - This analysis is uniquely generated based on the video's specific characteristics.", videoID),
	}
	return strings.Join(parts, ". ") + "."
}
