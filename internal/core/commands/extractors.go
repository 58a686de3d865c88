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

// This file defines the three extractor commands. Each reads the video path
// and id from the context and stores its result under its own key, so they
// can run in parallel inside a FanOut. A failed extraction is not a failed
// command: the error variant of the result is stored, logged and counted,
// and the chain continues with defaults.
package commands

import (
	"log/slog"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// FrameAnalysis runs the frame analyzer.
type FrameAnalysis struct {
	cor.BaseCommand
	analyzer FrameAnalyzer
}

// NewFrameAnalysis creates the frame analysis command.
func NewFrameAnalysis(name string, analyzer FrameAnalyzer) *FrameAnalysis {
	out := &FrameAnalysis{BaseCommand: *cor.NewBaseCommand(name), analyzer: analyzer}
	out.InputParamName = ParamVideoPath
	out.OutputParamName = ParamFrames
	return out
}

// Execute stores a model.FrameResult under ParamFrames.
func (c *FrameAnalysis) Execute(context cor.Context) {
	path, _ := context.Get(c.GetInputParam()).(string)
	videoID := VideoID(context)
	result := c.analyzer.Analyze(context.GetContext(), path, videoID)
	if !result.Ok() {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Error("Error analyzing frames", "stage", c.GetName(), "video_id", videoID, "error", result.Err)
		context.Add(c.GetOutputParam(), result)
		return
	}
	c.Succeed(context, result)
}

// AudioAnalysis runs the audio analyzer.
type AudioAnalysis struct {
	cor.BaseCommand
	analyzer AudioAnalyzer
}

// NewAudioAnalysis creates the audio analysis command.
func NewAudioAnalysis(name string, analyzer AudioAnalyzer) *AudioAnalysis {
	out := &AudioAnalysis{BaseCommand: *cor.NewBaseCommand(name), analyzer: analyzer}
	out.InputParamName = ParamVideoPath
	out.OutputParamName = ParamAudio
	return out
}

// Execute stores a model.AudioResult under ParamAudio.
func (c *AudioAnalysis) Execute(context cor.Context) {
	path, _ := context.Get(c.GetInputParam()).(string)
	videoID := VideoID(context)
	result := c.analyzer.Analyze(context.GetContext(), path, videoID)
	if !result.Ok() {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Error("Error analyzing audio", "stage", c.GetName(), "video_id", videoID, "error", result.Err)
		context.Add(c.GetOutputParam(), result)
		return
	}
	c.Succeed(context, result)
}

// SpeechExtraction runs the speech extractor.
type SpeechExtraction struct {
	cor.BaseCommand
	extractor SpeechExtractor
}

// NewSpeechExtraction creates the speech extraction command.
func NewSpeechExtraction(name string, extractor SpeechExtractor) *SpeechExtraction {
	out := &SpeechExtraction{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor}
	out.InputParamName = ParamVideoPath
	out.OutputParamName = ParamSpeech
	return out
}

// Execute stores a model.SpeechResult under ParamSpeech. The generic error
// sentinel is counted as an error; "no speech" and "unavailable" are not.
func (c *SpeechExtraction) Execute(context cor.Context) {
	path, _ := context.Get(c.GetInputParam()).(string)
	result := c.extractor.Extract(context.GetContext(), path, VideoID(context))
	if result.ExtractedText == model.SpeechErrorText {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), result)
		return
	}
	c.Succeed(context, result)
}
