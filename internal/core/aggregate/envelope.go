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
	"errors"
	"fmt"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// ErrAggregation is returned when an envelope cannot be assembled.
var ErrAggregation = errors.New("aggregation failed")

// ProcessingTimeLayout formats the local processing timestamp.
const ProcessingTimeLayout = "2006-01-02T15:04:05.000000"

// SelectText picks the text to classify: the transcript when speech was
// recognized, otherwise the narrative.
func SelectText(speech model.SpeechResult, narrative string) (string, string) {
	if speech.HasSpeech && speech.ExtractedText != "" {
		return speech.ExtractedText, model.TextSourceSpeech
	}
	return narrative, model.TextSourceContextual
}

// Input carries everything Assemble needs.
type Input struct {
	VideoID    string
	Frames     model.FrameResult
	Audio      model.AudioResult
	Speech     model.SpeechResult
	Text       string
	TextSource string
	Sentiment  model.Prediction
	Emotion    model.Prediction
	Now        time.Time
}

// Assemble builds the response envelope.
//
// Logic Flow:
//  1. The primary emotion is followed by the contextual emotions drawn from a
//     generator seeded by the video id.
//  2. The generator is reseeded and the contextual sentiments follow the
//     primary sentiment.
//  3. The explainability scores continue the reseeded sequence.
func Assemble(in Input) (*model.Envelope, error) {
	switch {
	case in.VideoID == "":
		return nil, fmt.Errorf("%w: missing video id", ErrAggregation)
	case in.Text == "":
		return nil, fmt.Errorf("%w: no text was analyzed", ErrAggregation)
	case in.Sentiment.Label == "" || in.Emotion.Label == "":
		return nil, fmt.Errorf("%w: missing classifier output", ErrAggregation)
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	rng := NewGenerator(in.VideoID)
	emotions := append([]model.Label{PrimaryEmotion(in.Emotion, in.VideoID)},
		ContextualEmotions(rng, in.Frames, in.Audio, in.VideoID)...)

	rng = NewGenerator(in.VideoID)
	sentiments := append([]model.Label{PrimarySentiment(in.Sentiment, in.VideoID)},
		ContextualSentiments(rng, in.Sentiment.Label, in.VideoID)...)

	return &model.Envelope{
		VideoID: in.VideoID,
		Analysis: model.Analysis{Utterances: []model.Utterance{{
			StartTime:  0,
			EndTime:    in.Audio.Duration(),
			Text:       in.Text,
			TextSource: in.TextSource,
			Emotions:   emotions,
			Sentiments: sentiments,
		}}},
		VideoAnalysis:   in.Frames,
		AudioAnalysis:   in.Audio,
		SpeechAnalysis:  in.Speech,
		ProcessingTime:  in.Now.Format(ProcessingTimeLayout),
		ModelUsed:       model.ModelUsed,
		AnalysisSummary: Summary(in.Frames, in.Audio, in.Speech, in.VideoID),
		Explainability:  Explain(rng, in.Frames),
	}, nil
}

// HealthFeatures is the capability list reported by the health endpoint.
var HealthFeatures = []string{
	"Advanced video frame analysis",
	"Comprehensive audio processing",
	"Real speech recognition",
	"Advanced computer vision features",
	"Multi-model emotion classification",
	"Advanced sentiment analysis",
	"AI explainability framework",
	"Unique video signatures",
	"Comprehensive logging system",
	"Real-time processing",
}

// Health returns the static health descriptor.
func Health() model.Health {
	return model.Health{
		Status:       "healthy",
		ModelsLoaded: true,
		Features:     append([]string(nil), HealthFeatures...),
		Version:      "2.0 - Enhanced with Explainability & Uniqueness",
	}
}
