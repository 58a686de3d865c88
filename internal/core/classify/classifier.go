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

// Package classify wraps the sentiment and emotion text classifiers behind a
// single injected Service. The classifiers are created once at startup and
// shared read-only by every request.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
)

// ErrClassificationFailed wraps every failure of a classifier call.
var ErrClassificationFailed = errors.New("classification failed")

// Classifier returns the top label for a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Prediction, error)
}

// Service holds the sentiment and emotion classifiers.
type Service struct {
	sentiment     Classifier
	emotion       Classifier
	timeout       time.Duration
	maxInputChars int
}

// NewService creates the classification service. A zero timeout leaves the
// caller's deadline in charge; a zero maxInputChars disables truncation.
func NewService(sentiment Classifier, emotion Classifier, timeout time.Duration, maxInputChars int) (*Service, error) {
	if sentiment == nil || emotion == nil {
		return nil, errors.New("classification service requires a sentiment and an emotion classifier")
	}
	return &Service{sentiment: sentiment, emotion: emotion, timeout: timeout, maxInputChars: maxInputChars}, nil
}

// Sentiment returns the top sentiment label of text.
func (s *Service) Sentiment(ctx context.Context, text string) (model.Prediction, error) {
	return s.classify(ctx, "sentiment", s.sentiment, text)
}

// Emotion returns the top emotion label of text.
func (s *Service) Emotion(ctx context.Context, text string) (model.Prediction, error) {
	return s.classify(ctx, "emotion", s.emotion, text)
}

func (s *Service) classify(ctx context.Context, kind string, c Classifier, text string) (model.Prediction, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	p, err := c.Classify(ctx, Truncate(text, s.maxInputChars))
	if err != nil {
		return model.Prediction{}, fmt.Errorf("%w: %s: %w", ErrClassificationFailed, kind, err)
	}
	if p.Label == "" {
		return model.Prediction{}, fmt.Errorf("%w: %s: empty label", ErrClassificationFailed, kind)
	}
	p.Label = strings.ToLower(p.Label)
	p.Score = clamp01(p.Score)
	slog.Debug("text classified", "kind", kind, "label", p.Label, "score", p.Score, "elapsed", time.Since(start))
	return p, nil
}

// Truncate shortens text to at most limit runes. A limit of 0 or less keeps
// the text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
