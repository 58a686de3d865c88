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

package aggregate

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// Label sources.
const (
	SourcePrimaryClassifier = "primary_classifier"
	SourcePrimaryAnalysis   = "primary_analysis"
	SourceContextual        = "contextual_analysis"
)

// MaxContextualEmotions is the number of contextual emotions drawn at most.
const MaxContextualEmotions = 4

var emotionSources = []string{"visual_analysis", "motion_analysis", "audio_analysis"}

// EmotionPool lists the candidate contextual emotions for the given
// aggregates, without duplicates, in the order the rules add them.
func EmotionPool(frames model.FrameResult, audio model.AudioResult) []string {
	var pool []string

	switch brightness := frames.Brightness(); {
	case brightness > 150:
		pool = append(pool, "joy", "excitement", "enthusiasm")
	case brightness < 100:
		pool = append(pool, "melancholy", "contemplation", "serenity")
	default:
		pool = append(pool, "contentment", "balance", "harmony")
	}

	switch motion := frames.Motion(); {
	case motion > 30:
		pool = append(pool, "energy", "dynamism", "vitality")
	case motion < 10:
		pool = append(pool, "calmness", "serenity", "tranquility")
	default:
		pool = append(pool, "moderation", "stability", "equilibrium")
	}

	if audio.Energy() > 0.7 {
		pool = append(pool, "enthusiasm", "passion", "intensity")
	}
	if audio.Tempo() > 140 {
		pool = append(pool, "excitement", "eagerness", "zeal")
	}
	return dedupe(pool)
}

// ContextualEmotions draws up to four emotions from the pool with a
// confidence in [0.5, 0.9) and a random source tag.
func ContextualEmotions(rng *rand.Rand, frames model.FrameResult, audio model.AudioResult, videoID string) []model.Label {
	selected := sample(rng, EmotionPool(frames, audio), MaxContextualEmotions)
	out := make([]model.Label, 0, len(selected))
	for i, label := range selected {
		confidence := 0.5 + rng.Float64()*0.4
		source := emotionSources[rng.Intn(len(emotionSources))]
		out = append(out, model.Label{
			ID:         fmt.Sprintf("emotion_%s_%d_%s", videoID, i, labelSuffix(label)),
			Label:      label,
			Confidence: confidence,
			Source:     source,
		})
	}
	return out
}

// PrimaryEmotion converts the emotion classifier output into a label entry.
func PrimaryEmotion(p model.Prediction, videoID string) model.Label {
	return model.Label{
		ID:         fmt.Sprintf("emotion_%s_primary_%s", videoID, labelSuffix(p.Label)),
		Label:      p.Label,
		Confidence: p.Score,
		Source:     SourcePrimaryClassifier,
	}
}

// PrimarySentiment converts the sentiment classifier output into a label entry.
func PrimarySentiment(p model.Prediction, videoID string) model.Label {
	return model.Label{
		ID:         fmt.Sprintf("sentiment_%s_primary_%s", videoID, labelSuffix(p.Label)),
		Label:      p.Label,
		Confidence: p.Score,
		Source:     SourcePrimaryAnalysis,
	}
}

// ContextualSentiments draws two sentiments other than the primary label,
// each with a confidence in [0.4, 0.8). When fewer than two remain the fixed
// pair moderate, balanced is used instead.
func ContextualSentiments(rng *rand.Rand, primary string, videoID string) []model.Label {
	available := []string{"positive", "neutral", "negative"}
	if i := slices.Index(available, strings.ToLower(primary)); i >= 0 {
		available = slices.Delete(available, i, i+1)
	}

	var selected []string
	if len(available) >= 2 {
		selected = sample(rng, available, 2)
	} else {
		selected = []string{"moderate", "balanced"}
	}

	out := make([]model.Label, 0, len(selected))
	for i, label := range selected {
		out = append(out, model.Label{
			ID:         fmt.Sprintf("sentiment_%s_contextual_%d_%s", videoID, i, labelSuffix(label)),
			Label:      label,
			Confidence: 0.4 + rng.Float64()*0.4,
			Source:     SourceContextual,
		})
	}
	return out
}
