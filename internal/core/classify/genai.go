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
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"go.opentelemetry.io/otel"
	"google.golang.org/genai"
)

// Default prompts used when prompt_templates leaves them empty. Templates
// receive a PromptParams value.
const (
	DefaultSentimentPrompt = `Classify the overall sentiment of the following text.
Choose exactly one label from: {{ join .Labels ", " }}.
Return the label and your confidence between 0 and 1.

Text:
{{ .Text }}`

	DefaultEmotionPrompt = `Identify the dominant emotion expressed by the following text.
Choose exactly one label from: {{ join .Labels ", " }}.
Return the label and your confidence between 0 and 1.

Text:
{{ .Text }}`
)

// PromptParams is the data passed to a prompt template.
type PromptParams struct {
	Text   string
	Labels []string
}

// GenAIClassifier asks a Gemini model to choose one of a fixed set of labels.
// The response is constrained by a JSON schema whose label property is an
// enum of the allowed labels.
type GenAIClassifier struct {
	name     string
	model    *cloud.QuotaAwareGenerativeAIModel
	prompt   *template.Template
	labels   []string
	counters cloud.TokenCounters
}

// NewGenAIClassifier creates a classifier on top of a quota-aware model. The
// model's generation settings are copied and extended with the response
// schema; the rate limiter and handle stay shared with the original.
func NewGenAIClassifier(name string, base *cloud.QuotaAwareGenerativeAIModel, promptTemplate string, labels []string) (*GenAIClassifier, error) {
	if base == nil {
		return nil, fmt.Errorf("%s classifier requires an agent model", name)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%s classifier requires at least one label", name)
	}
	tmpl, err := template.New(name).Funcs(template.FuncMap{"join": strings.Join}).Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid %s prompt: %w", name, err)
	}

	cfg := &genai.GenerateContentConfig{}
	if base.GenerativeContentConfig != nil {
		copied := *base.GenerativeContentConfig
		cfg = &copied
	}
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = LabelSchema(labels)

	return &GenAIClassifier{
		name: name,
		model: &cloud.QuotaAwareGenerativeAIModel{
			GenerativeContentConfig: cfg,
			ModelName:               base.ModelName,
			ModelHandle:             base.ModelHandle,
			RateLimit:               base.RateLimit,
		},
		prompt:   tmpl,
		labels:   slices.Clone(labels),
		counters: cloud.NewTokenCounters(otel.Meter("github.com/jaycherian/video-sentiment-analyzer"), "classify."+name),
	}, nil
}

// LabelSchema is the response schema {"label": enum, "score": number}.
func LabelSchema(labels []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"label": {Type: genai.TypeString, Enum: slices.Clone(labels)},
			"score": {Type: genai.TypeNumber},
		},
		Required: []string{"label", "score"},
	}
}

// Classify implements Classifier.
func (g *GenAIClassifier) Classify(ctx context.Context, text string) (model.Prediction, error) {
	var sb strings.Builder
	if err := g.prompt.Execute(&sb, PromptParams{Text: text, Labels: g.labels}); err != nil {
		return model.Prediction{}, fmt.Errorf("failed to render %s prompt: %w", g.name, err)
	}
	out, err := cloud.GenerateText(ctx, g.counters, g.model, cloud.NewTextPart(sb.String()))
	if err != nil {
		return model.Prediction{}, err
	}

	var p model.Prediction
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		return model.Prediction{}, fmt.Errorf("failed to parse %s response %q: %w", g.name, out, err)
	}
	p.Label = strings.ToLower(strings.TrimSpace(p.Label))
	if !slices.Contains(g.labels, p.Label) {
		return model.Prediction{}, fmt.Errorf("unexpected %s label %q", g.name, p.Label)
	}
	return p, nil
}
