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

// This file initializes and holds the generative AI client shared by the
// speech and classifier backends. It acts as a dependency injection container:
// one ServiceClients value is created at startup and passed to the code that
// builds the analysis workflow.
//
// Logic Flow:
//  1. NewServiceClients is called at application startup with the loaded Config.
//  2. If neither the speech nor the classifier section selects the genai
//     backend, no client is created and the struct is returned empty.
//  3. Otherwise a genai client is created for Vertex AI or the Gemini API.
//  4. Each configured agent model is wrapped in a QuotaAwareGenerativeAIModel.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/genai"
)

// GenAI backends accepted by application.genai_backend.
const (
	GenAIBackendVertex    = "vertex"
	GenAIBackendGeminiAPI = "gemini_api"
)

// ServiceClients is the container for clients that talk to external services.
type ServiceClients struct {
	GenAIClient *genai.Client                           // Nil when no backend uses Gemini.
	AgentModels map[string]*QuotaAwareGenerativeAIModel // Keyed by the logical name from the config.
}

// Close releases client resources. The genai client holds no connection
// that needs closing, so this only exists to keep the lifecycle symmetric.
func (c *ServiceClients) Close() {}

// NewServiceClients creates the clients required by the configured backends.
//
// Inputs:
//   - ctx: The root context.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The initialized clients.
//   - error: An error if the genai client cannot be created.
func NewServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	clients := &ServiceClients{AgentModels: make(map[string]*QuotaAwareGenerativeAIModel)}
	if config.Speech.Backend != BackendGenAI && config.Classifier.Backend != BackendGenAI {
		return clients, nil
	}

	clientConfig := &genai.ClientConfig{}
	switch config.Application.GenAIBackend {
	case GenAIBackendVertex:
		clientConfig.Project = config.Application.GoogleProjectId
		clientConfig.Location = config.Application.GoogleLocation
		clientConfig.Backend = genai.BackendVertexAI
	case GenAIBackendGeminiAPI, "":
		clientConfig.APIKey = os.Getenv(config.Application.APIKeyEnv)
		clientConfig.Backend = genai.BackendGeminiAPI
		if clientConfig.APIKey == "" {
			return nil, fmt.Errorf("environment variable %s holds no Gemini API key", config.Application.APIKeyEnv)
		}
	default:
		return nil, fmt.Errorf("unknown genai backend %q", config.Application.GenAIBackend)
	}

	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	clients.GenAIClient = gc

	for amKey, values := range config.AgentModels {
		slog.Debug("configuring agent model", "key", amKey, "model", values.Model)
		clients.AgentModels[amKey] = NewQuotaAwareModel(NewGenerateContentConfig(values), values.Model, gc.Models, values.RateLimit)
	}
	return clients, nil
}

// NewGenerateContentConfig converts the TOML model settings into request
// settings.
func NewGenerateContentConfig(values VertexAiLLMModel) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](values.Temperature),
		TopP:             genai.Ptr[float32](values.TopP),
		TopK:             genai.Ptr[float32](values.TopK),
		MaxOutputTokens:  values.MaxTokens,
		SafetySettings:   DefaultSafetySettings,
		ResponseMIMEType: values.OutputFormat,
	}
	if values.SystemInstructions != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}}
	}
	return cfg
}
