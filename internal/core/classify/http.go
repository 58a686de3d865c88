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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"golang.org/x/time/rate"
)

// HTTPClassifier calls a text-classification inference endpoint that takes
// {"inputs": "..."} and answers with label/score pairs, either nested
// ([[{...}]]) or flat ([{...}]).
type HTTPClassifier struct {
	url     string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPClassifier creates a classifier for endpoint/modelName. A nil
// limiter disables rate limiting.
func NewHTTPClassifier(endpoint string, modelName string, apiKey string, client *http.Client, limiter *rate.Limiter) (*HTTPClassifier, error) {
	if endpoint == "" {
		return nil, errors.New("http classifier requires an endpoint")
	}
	url := strings.TrimSuffix(endpoint, "/")
	if modelName != "" {
		url += "/" + strings.TrimPrefix(modelName, "/")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClassifier{url: url, apiKey: apiKey, client: client, limiter: limiter}, nil
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Classify implements Classifier. The highest scoring label is returned.
func (h *HTTPClassifier) Classify(ctx context.Context, text string) (model.Prediction, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return model.Prediction{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to call classifier: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Prediction{}, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return topPrediction(body)
}

func topPrediction(body []byte) (model.Prediction, error) {
	var nested [][]model.Prediction
	if err := json.Unmarshal(body, &nested); err != nil {
		var flat []model.Prediction
		if err := json.Unmarshal(body, &flat); err != nil {
			return model.Prediction{}, fmt.Errorf("failed to decode response: %w", err)
		}
		nested = [][]model.Prediction{flat}
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return model.Prediction{}, errors.New("classifier returned no labels")
	}
	best := nested[0][0]
	for _, p := range nested[0][1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, nil
}
