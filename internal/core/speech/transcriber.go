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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"text/template"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"go.opentelemetry.io/otel"
)

var (
	// ErrNoSpeech means the audio holds nothing that could be transcribed.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrServiceUnavailable means the speech service could not be reached or
	// refused the request.
	ErrServiceUnavailable = errors.New("speech recognition service unavailable")
)

// Transcriber converts a mono 16-bit WAV payload into text. Implementations
// return ErrNoSpeech when the audio is unintelligible and wrap transport or
// service failures in ErrServiceUnavailable.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// noSpeechMarker is what the Gemini prompt asks the model to answer when
// nobody speaks.
const noSpeechMarker = "NO_SPEECH"

// DefaultTranscriptionPrompt is used when no prompt template is configured.
const DefaultTranscriptionPrompt = `Transcribe the English speech in the attached audio verbatim.
Return only the transcript as plain text. If the audio contains no intelligible speech, return exactly ` + noSpeechMarker + `.`

// GenAITranscriber sends audio to a Gemini model as inline data.
type GenAITranscriber struct {
	model    *cloud.QuotaAwareGenerativeAIModel
	prompt   string
	counters cloud.TokenCounters
}

// NewGenAITranscriber creates a Gemini backed transcriber. An empty
// promptTemplate selects DefaultTranscriptionPrompt. The template is
// rendered once with no data, so it may only use constant actions.
func NewGenAITranscriber(model *cloud.QuotaAwareGenerativeAIModel, promptTemplate string) (*GenAITranscriber, error) {
	if model == nil {
		return nil, errors.New("genai transcriber requires an agent model")
	}
	if strings.TrimSpace(promptTemplate) == "" {
		promptTemplate = DefaultTranscriptionPrompt
	}
	tmpl, err := template.New("transcription").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid transcription prompt: %w", err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, nil); err != nil {
		return nil, fmt.Errorf("invalid transcription prompt: %w", err)
	}
	return &GenAITranscriber{
		model:    model,
		prompt:   sb.String(),
		counters: cloud.NewTokenCounters(otel.Meter("github.com/jaycherian/video-sentiment-analyzer"), "speech.genai"),
	}, nil
}

// Transcribe implements Transcriber.
func (g *GenAITranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	text, err := cloud.GenerateText(ctx, g.counters, g.model, cloud.NewInlineData(g.prompt, wav, "audio/wav"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, noSpeechMarker) {
		return "", ErrNoSpeech
	}
	return text, nil
}

// HTTPTranscriber posts audio as a multipart upload to a speech-to-text
// service that answers with {"text": "..."}.
type HTTPTranscriber struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPTranscriber creates an HTTP backed transcriber. The client's
// timeout bounds each request.
func NewHTTPTranscriber(endpoint string, apiKey string, client *http.Client) (*HTTPTranscriber, error) {
	if endpoint == "" {
		return nil, errors.New("http transcriber requires an endpoint")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTranscriber{endpoint: endpoint, apiKey: apiKey, client: client}, nil
}

type transcriptResponse struct {
	Text string `json:"text"`
}

// Transcribe implements Transcriber.
func (h *HTTPTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transcript: %w", err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// UnavailableTranscriber is used when no speech backend is configured.
type UnavailableTranscriber struct{}

// Transcribe always reports the service as unavailable.
func (UnavailableTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return "", ErrServiceUnavailable
}
