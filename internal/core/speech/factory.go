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

package speech

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
)

// NewTranscriberFromConfig returns the Transcriber selected by the speech
// section of the configuration.
func NewTranscriberFromConfig(config *cloud.Config, clients *cloud.ServiceClients) (Transcriber, error) {
	s := config.Speech
	switch s.Backend {
	case cloud.BackendGenAI:
		if clients == nil {
			return nil, fmt.Errorf("speech backend %q requires service clients", s.Backend)
		}
		agent, ok := clients.AgentModels[s.AgentModel]
		if !ok {
			return nil, fmt.Errorf("agent model %q is not configured", s.AgentModel)
		}
		return NewGenAITranscriber(agent, config.PromptTemplates.Transcription)
	case cloud.BackendHTTP:
		apiKey := ""
		if s.APIKeyEnv != "" {
			apiKey = os.Getenv(s.APIKeyEnv)
		}
		return NewHTTPTranscriber(s.Endpoint, apiKey, &http.Client{Timeout: time.Duration(s.TimeoutSeconds) * time.Second})
	case cloud.BackendNone, "":
		return UnavailableTranscriber{}, nil
	default:
		return nil, fmt.Errorf("unknown speech backend %q", s.Backend)
	}
}
