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
	"fmt"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/narrative"
)

// NarrativeSynthesis writes the prose description of the video.
type NarrativeSynthesis struct {
	cor.BaseCommand
}

// NewNarrativeSynthesis creates the narrative command.
func NewNarrativeSynthesis(name string) *NarrativeSynthesis {
	out := &NarrativeSynthesis{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = ParamFrames
	out.OutputParamName = ParamNarrative
	return out
}

// IsExecutable requires both the frame and the audio results.
func (c *NarrativeSynthesis) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(ParamAudio) != nil
}

// Execute stores the narrative under ParamNarrative.
func (c *NarrativeSynthesis) Execute(context cor.Context) {
	frames, okFrames := FrameResultFrom(context)
	audio, okAudio := AudioResultFrom(context)
	if !okFrames || !okAudio {
		c.Fail(context, fmt.Errorf("frame and audio results are required"))
		return
	}
	c.Succeed(context, narrative.Synthesize(frames, audio, VideoID(context)))
}
