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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements the
// video analysis workflow behind the analyze endpoint.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/aggregate"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/audio"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/classify"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/commands"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/media"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/speech"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/vision"
)

// Command names, also used as the stage names in logs and recorded errors.
const (
	StageUpload         = "upload-to-temp-file"
	StageExtract        = "extract-features"
	StageFrameAnalysis  = "frame-analysis"
	StageAudioAnalysis  = "audio-analysis"
	StageSpeech         = "speech-extraction"
	StageNarrative      = "narrative-synthesis"
	StageClassification = "text-classification"
	StageAggregation    = "result-aggregation"
)

// ErrNoEnvelope is returned when the chain finished without errors but also
// without a response envelope.
var ErrNoEnvelope = errors.New("analysis produced no result")

// Dependencies are the components the workflow drives. Every field except
// Now and TempDir is required.
type Dependencies struct {
	Frames     commands.FrameAnalyzer
	Audio      commands.AudioAnalyzer
	Speech     commands.SpeechExtractor
	Classifier commands.TextClassifier
	Now        func() time.Time // Clock for processing_time; time.Now when nil.
	TempDir    string           // Directory for uploads; the OS default when empty.
}

// VideoAnalysisWorkflow analyzes one uploaded video per execution. It is a
// Chain of Responsibility (cor.Chain) of the commands in the commands
// package and is safe for concurrent use: all request state lives in the
// cor.Context of each execution.
type VideoAnalysisWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	deps   Dependencies
	chain  cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the workflow against a context prepared by the caller. The
// context must hold the upload under commands.ParamUpload and the video id
// under commands.ParamVideoID.
func (w *VideoAnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
func (w *VideoAnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Persist the upload so ffmpeg can seek in it.
	out.AddCommand(commands.NewUploadToTempFile(StageUpload, w.deps.TempDir, w.config.Analysis.TempFilePrefix))

	// Step 2: The three extractors only read the temp file. A failed
	// extractor degrades to the error variant of its result.
	out.AddCommand(cor.NewFanOut(StageExtract, w.config.Analysis.ConcurrentExtractors,
		commands.NewFrameAnalysis(StageFrameAnalysis, w.deps.Frames),
		commands.NewAudioAnalysis(StageAudioAnalysis, w.deps.Audio),
		commands.NewSpeechExtraction(StageSpeech, w.deps.Speech),
	))

	// Step 3: Describe the clip from its features.
	out.AddCommand(commands.NewNarrativeSynthesis(StageNarrative))

	// Step 4: Label the transcript, or the narrative when nobody spoke.
	out.AddCommand(commands.NewClassification(StageClassification, w.deps.Classifier))

	// Step 5: Assemble the response.
	out.AddCommand(commands.NewAggregation(StageAggregation, w.deps.Now))

	w.chain = out
}

// NewVideoAnalysisWorkflow creates the workflow from already built
// components.
//
// Inputs:
//   - config: The application configuration; only the analysis section is read.
//   - deps: The analyzers, the speech extractor and the classifier service.
//
// Returns:
//   - The initialized workflow, or an error when a dependency is missing.
func NewVideoAnalysisWorkflow(config *cloud.Config, deps Dependencies) (*VideoAnalysisWorkflow, error) {
	if config == nil {
		return nil, errors.New("video analysis workflow requires a configuration")
	}
	if deps.Frames == nil || deps.Audio == nil || deps.Speech == nil || deps.Classifier == nil {
		return nil, errors.New("video analysis workflow requires frame, audio, speech and classifier components")
	}
	w := &VideoAnalysisWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-analysis-pipeline"),
		config:      config,
		deps:        deps,
	}
	w.initializeChain()
	return w, nil
}

// NewVideoAnalysisPipeline wires the production components from the
// configuration: the ffmpeg executor, the frame and audio analyzers, the
// speech extractor with its configured transcriber and the classifier
// service.
func NewVideoAnalysisPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients) (*VideoAnalysisWorkflow, error) {
	executor, err := media.NewExecutor(config.Analysis.FFmpegPath, config.Analysis.FFprobePath)
	if err != nil {
		return nil, err
	}
	transcriber, err := speech.NewTranscriberFromConfig(config, serviceClients)
	if err != nil {
		return nil, err
	}
	classifier, err := classify.NewServiceFromConfig(config, serviceClients)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(config.Analysis.TimeoutSeconds) * time.Second
	return NewVideoAnalysisWorkflow(config, Dependencies{
		Frames: vision.NewAnalyzer(executor, config.Analysis.FrameMaxWidth, timeout),
		Audio:  audio.NewAnalyzer(executor, config.Analysis.AudioSampleRate, timeout),
		Speech: speech.NewExtractor(executor, transcriber,
			config.Speech.SampleRate, config.Speech.CalibrationSeconds,
			time.Duration(config.Speech.TimeoutSeconds)*time.Second),
		Classifier: classifier,
	})
}

// Analyze runs the workflow for one upload and returns the envelope. The
// temp file is removed before Analyze returns, whatever the outcome.
//
// Inputs:
//   - ctx: The request context; cancelling it stops the ffmpeg work.
//   - fileName: The client supplied file name. The video id is derived from it.
//   - body: The upload content.
//
// Returns:
//   - The response envelope, or the error of the stage that aborted the chain.
func (w *VideoAnalysisWorkflow) Analyze(ctx context.Context, fileName string, body io.Reader) (*model.Envelope, error) {
	videoID := aggregate.Fingerprint(fileName)
	slog.InfoContext(ctx, fmt.Sprintf("Processing video: %s (ID: %s)", fileName, videoID), "video_id", videoID)

	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.ParamVideoID, videoID)
	chCtx.Add(commands.ParamUpload, &commands.Upload{FileName: fileName, Body: body})

	w.Execute(chCtx)

	if chCtx.HasErrors() {
		for stage, err := range chCtx.GetErrors() {
			slog.ErrorContext(ctx, "Error processing video", "stage", stage, "video_id", videoID, "error", err)
		}
		return nil, cor.JoinErrors(chCtx)
	}
	envelope, ok := commands.EnvelopeFrom(chCtx)
	if !ok {
		return nil, ErrNoEnvelope
	}
	slog.InfoContext(ctx, fmt.Sprintf("Analysis complete for: %s (ID: %s)", fileName, videoID), "video_id", videoID)
	return envelope, nil
}
