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

package classify

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"golang.org/x/time/rate"
)

// NewServiceFromConfig builds the classification service selected by the
// classifier section of the configuration.
//
// Inputs:
//   - config: The loaded application configuration.
//   - clients: The service clients; only used by the genai backend.
//
// Outputs:
//   - *Service: The service shared by every request.
//   - error: An error when the backend is unknown or misconfigured.
func NewServiceFromConfig(config *cloud.Config, clients *cloud.ServiceClients) (*Service, error) {
	c := config.Classifier
	timeout := time.Duration(c.TimeoutSeconds) * time.Second

	var sentiment, emotion Classifier
	switch c.Backend {
	case cloud.BackendGenAI:
		if clients == nil {
			return nil, fmt.Errorf("classifier backend %q requires service clients", c.Backend)
		}
		agent, ok := clients.AgentModels[c.AgentModel]
		if !ok {
			return nil, fmt.Errorf("agent model %q is not configured", c.AgentModel)
		}
		var err error
		if sentiment, err = NewGenAIClassifier("sentiment", agent, orDefault(config.PromptTemplates.Sentiment, DefaultSentimentPrompt), c.SentimentLabels); err != nil {
			return nil, err
		}
		if emotion, err = NewGenAIClassifier("emotion", agent, orDefault(config.PromptTemplates.Emotion, DefaultEmotionPrompt), c.EmotionLabels); err != nil {
			return nil, err
		}
	case cloud.BackendHTTP:
		apiKey := ""
		if c.APIKeyEnv != "" {
			apiKey = os.Getenv(c.APIKeyEnv)
		}
		client := &http.Client{Timeout: timeout}
		var limiter *rate.Limiter
		if c.RateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(c.RateLimit), c.RateLimit)
		}
		var err error
		if sentiment, err = NewHTTPClassifier(c.Endpoint, c.SentimentModel, apiKey, client, limiter); err != nil {
			return nil, err
		}
		if emotion, err = NewHTTPClassifier(c.Endpoint, c.EmotionModel, apiKey, client, limiter); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", c.Backend)
	}
	return NewService(sentiment, emotion, timeout, c.MaxInputChars)
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
