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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for a video analysis
// request. This file declares the context keys shared by the commands and the
// small interfaces they depend on.
//
// The stages, in order:
//
//  1. UploadToTempFile saves the multipart upload and registers it for cleanup.
//  2. FrameAnalysis, AudioAnalysis and SpeechExtraction run inside a FanOut.
//     They never record errors: a failed extractor is stored as the error
//     variant of its result.
//  3. NarrativeSynthesis describes the video from the frame and audio results.
//  4. Classification labels the transcript, or the narrative when nobody spoke.
//  5. Aggregation builds the response envelope.
package commands

import (
	"context"
	"io"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// Context keys.
const (
	ParamUpload     = "__UPLOAD__"
	ParamVideoID    = "__VIDEO_ID__"
	ParamVideoPath  = "__VIDEO_PATH__"
	ParamMIMEType   = "__MIME_TYPE__"
	ParamFrames     = "__FRAME_RESULT__"
	ParamAudio      = "__AUDIO_RESULT__"
	ParamSpeech     = "__SPEECH_RESULT__"
	ParamNarrative  = "__NARRATIVE__"
	ParamText       = "__ANALYZED_TEXT__"
	ParamTextSource = "__TEXT_SOURCE__"
	ParamSentiment  = "__SENTIMENT__"
	ParamEmotion    = "__EMOTION__"
	ParamEnvelope   = "__ENVELOPE__"
)

// Upload is the file received by the endpoint.
type Upload struct {
	FileName string
	Body     io.Reader
}

// FrameAnalyzer is implemented by *vision.Analyzer.
type FrameAnalyzer interface {
	Analyze(ctx context.Context, path string, videoID string) model.FrameResult
}

// AudioAnalyzer is implemented by *audio.Analyzer.
type AudioAnalyzer interface {
	Analyze(ctx context.Context, path string, videoID string) model.AudioResult
}

// SpeechExtractor is implemented by *speech.Extractor.
type SpeechExtractor interface {
	Extract(ctx context.Context, path string, videoID string) model.SpeechResult
}

// TextClassifier is implemented by *classify.Service.
type TextClassifier interface {
	Sentiment(ctx context.Context, text string) (model.Prediction, error)
	Emotion(ctx context.Context, text string) (model.Prediction, error)
}

// VideoID returns the id stored on the context, or "" before it is set.
func VideoID(context cor.Context) string {
	id, _ := context.Get(ParamVideoID).(string)
	return id
}

// FrameResultFrom returns the frame result stored on the context.
func FrameResultFrom(context cor.Context) (model.FrameResult, bool) {
	r, ok := context.Get(ParamFrames).(model.FrameResult)
	return r, ok
}

// AudioResultFrom returns the audio result stored on the context.
func AudioResultFrom(context cor.Context) (model.AudioResult, bool) {
	r, ok := context.Get(ParamAudio).(model.AudioResult)
	return r, ok
}

// SpeechResultFrom returns the speech result stored on the context.
func SpeechResultFrom(context cor.Context) (model.SpeechResult, bool) {
	r, ok := context.Get(ParamSpeech).(model.SpeechResult)
	return r, ok
}

// EnvelopeFrom returns the envelope stored on the context.
func EnvelopeFrom(context cor.Context) (*model.Envelope, bool) {
	e, ok := context.Get(ParamEnvelope).(*model.Envelope)
	return e, ok && e != nil
}
