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

package commands

import (
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/aggregate"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// Aggregation assembles the response envelope.
type Aggregation struct {
	cor.BaseCommand
	now func() time.Time
}

// NewAggregation creates the aggregation command. A nil clock selects
// time.Now.
func NewAggregation(name string, now func() time.Time) *Aggregation {
	if now == nil {
		now = time.Now
	}
	out := &Aggregation{BaseCommand: *cor.NewBaseCommand(name), now: now}
	out.InputParamName = ParamSentiment
	out.OutputParamName = ParamEnvelope
	return out
}

// Execute stores the *model.Envelope under ParamEnvelope.
func (c *Aggregation) Execute(context cor.Context) {
	frames, _ := FrameResultFrom(context)
	audio, _ := AudioResultFrom(context)
	speech, _ := SpeechResultFrom(context)
	text, _ := context.Get(ParamText).(string)
	source, _ := context.Get(ParamTextSource).(string)
	sentiment, _ := context.Get(ParamSentiment).(model.Prediction)
	emotion, _ := context.Get(ParamEmotion).(model.Prediction)

	envelope, err := aggregate.Assemble(aggregate.Input{
		VideoID:    VideoID(context),
		Frames:     frames,
		Audio:      audio,
		Speech:     speech,
		Text:       text,
		TextSource: source,
		Sentiment:  sentiment,
		Emotion:    emotion,
		Now:        c.now(),
	})
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, envelope)
}
