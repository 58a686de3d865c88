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

// This file defines the command that runs the text classifiers.
//
// Logic Flow:
//  1. The transcript is used when speech was recognized; otherwise the
//     narrative stands in for it.
//  2. The sentiment classifier runs first, then the emotion classifier.
//  3. Either failure is recorded on the context and aborts the chain.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/aggregate"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
)

// Classification labels the analyzed text.
type Classification struct {
	cor.BaseCommand
	classifier TextClassifier
}

// NewClassification creates the classification command.
func NewClassification(name string, classifier TextClassifier) *Classification {
	out := &Classification{BaseCommand: *cor.NewBaseCommand(name), classifier: classifier}
	out.InputParamName = ParamNarrative
	out.OutputParamName = ParamSentiment
	return out
}

// Execute stores the text, its source and both predictions on the context.
func (c *Classification) Execute(context cor.Context) {
	narrativeText, _ := context.Get(c.GetInputParam()).(string)
	speech, _ := SpeechResultFrom(context)
	text, source := aggregate.SelectText(speech, narrativeText)

	sentiment, err := c.classifier.Sentiment(context.GetContext(), text)
	if err != nil {
		c.Fail(context, err)
		return
	}
	emotion, err := c.classifier.Emotion(context.GetContext(), text)
	if err != nil {
		c.Fail(context, err)
		return
	}
	if sentiment.Label == "" || emotion.Label == "" {
		c.Fail(context, fmt.Errorf("classifier returned an empty label"))
		return
	}

	slog.Debug("text classified", "video_id", VideoID(context), "text_source", source,
		"sentiment", sentiment.Label, "emotion", emotion.Label)
	context.Add(ParamText, text)
	context.Add(ParamTextSource, source)
	context.Add(ParamEmotion, emotion)
	c.Succeed(context, sentiment)
}
