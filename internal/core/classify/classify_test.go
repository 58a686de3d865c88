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

package classify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/classify"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	test "github.com/jaycherian/video-sentiment-analyzer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	reply string
	err   error

	mu       sync.Mutex
	prompts  []string
	configs  []*genai.GenerateContentConfig
	modelArg string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modelArg = model
	f.configs = append(f.configs, config)
	f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}}}},
	}, nil
}

func newAgent(gen *fakeGenerator) *cloud.QuotaAwareGenerativeAIModel {
	return cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.1)}, "gemini-test", gen, 100)
}

func TestServiceTruncatesAndNormalizes(t *testing.T) {
	sentiment := &test.FakeClassifier{Prediction: model.Prediction{Label: "POSITIVE", Score: 1.7}}
	emotion := &test.FakeClassifier{Prediction: model.Prediction{Label: "joy", Score: 0.6}}
	svc, err := classify.NewService(sentiment, emotion, time.Second, 5)
	require.NoError(t, err)

	p, err := svc.Sentiment(context.Background(), "héllo world")
	require.NoError(t, err)
	assert.Equal(t, model.Prediction{Label: "positive", Score: 1}, p)
	assert.Equal(t, []string{"héllo"}, sentiment.Inputs())

	p, err = svc.Emotion(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "joy", p.Label)
	assert.Equal(t, []string{"abc"}, emotion.Inputs())
}

func TestServiceWrapsFailures(t *testing.T) {
	svc, err := classify.NewService(
		&test.FakeClassifier{Err: errors.New("model offline")},
		&test.FakeClassifier{Prediction: model.Prediction{}},
		0, 0)
	require.NoError(t, err)

	_, err = svc.Sentiment(context.Background(), "text")
	assert.ErrorIs(t, err, classify.ErrClassificationFailed)
	assert.ErrorContains(t, err, "model offline")

	_, err = svc.Emotion(context.Background(), "text")
	assert.ErrorIs(t, err, classify.ErrClassificationFailed)

	_, err = classify.NewService(nil, nil, 0, 0)
	assert.Error(t, err)
}

type slowClassifier struct{}

func (slowClassifier) Classify(ctx context.Context, _ string) (model.Prediction, error) {
	<-ctx.Done()
	return model.Prediction{}, ctx.Err()
}

func TestServiceTimeout(t *testing.T) {
	svc, err := classify.NewService(slowClassifier{}, slowClassifier{}, 20*time.Millisecond, 0)
	require.NoError(t, err)
	_, err = svc.Sentiment(context.Background(), "text")
	assert.ErrorIs(t, err, classify.ErrClassificationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", classify.Truncate("abc", 0))
	assert.Equal(t, "abc", classify.Truncate("abc", 3))
	assert.Equal(t, "ab", classify.Truncate("abc", 2))
}

func TestGenAIClassifier(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"label\": \"Positive\", \"score\": 0.91}\n```"}
	labels := []string{"negative", "neutral", "positive"}
	c, err := classify.NewGenAIClassifier("sentiment", newAgent(gen), classify.DefaultSentimentPrompt, labels)
	require.NoError(t, err)

	p, err := c.Classify(context.Background(), "what a lovely day")
	require.NoError(t, err)
	assert.Equal(t, model.Prediction{Label: "positive", Score: 0.91}, p)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "negative, neutral, positive")
	assert.Contains(t, gen.prompts[0], "what a lovely day")
	assert.Equal(t, "gemini-test", gen.modelArg)

	cfg := gen.configs[0]
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.ResponseSchema)
	assert.Equal(t, labels, cfg.ResponseSchema.Properties["label"].Enum)
	assert.Equal(t, float32(0.1), *cfg.Temperature)
}

func TestGenAIClassifierRejectsUnknownLabel(t *testing.T) {
	gen := &fakeGenerator{reply: `{"label": "ecstatic", "score": 0.5}`}
	c, err := classify.NewGenAIClassifier("emotion", newAgent(gen), classify.DefaultEmotionPrompt, []string{"joy", "sadness"})
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), "text")
	assert.ErrorContains(t, err, "ecstatic")

	gen.reply = "not json"
	_, err = c.Classify(context.Background(), "text")
	assert.Error(t, err)

	gen.err = errors.New("quota exceeded")
	_, err = c.Classify(context.Background(), "text")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestGenAIClassifierValidation(t *testing.T) {
	_, err := classify.NewGenAIClassifier("sentiment", nil, classify.DefaultSentimentPrompt, []string{"a"})
	assert.Error(t, err)
	_, err = classify.NewGenAIClassifier("sentiment", newAgent(&fakeGenerator{}), classify.DefaultSentimentPrompt, nil)
	assert.Error(t, err)
	_, err = classify.NewGenAIClassifier("sentiment", newAgent(&fakeGenerator{}), "{{ .Text", []string{"a"})
	assert.Error(t, err)
}

func inferenceServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs string `json:"inputs"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch {
		case strings.HasSuffix(r.URL.Path, "/sentiment-model"):
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[[{"label":"negative","score":0.1},{"label":"positive","score":0.8},{"label":"neutral","score":0.1}]]`))
		case strings.HasSuffix(r.URL.Path, "/emotion-model"):
			_, _ = w.Write([]byte(`[{"label":"sadness","score":0.3},{"label":"joy","score":0.7}]`))
		case strings.HasSuffix(r.URL.Path, "/empty-model"):
			_, _ = w.Write([]byte(`[[]]`))
		default:
			http.Error(w, "model is loading", http.StatusServiceUnavailable)
		}
	}))
}

func TestHTTPClassifier(t *testing.T) {
	srv := inferenceServer(t)
	defer srv.Close()

	c, err := classify.NewHTTPClassifier(srv.URL+"/", "sentiment-model", "token", srv.Client(), nil)
	require.NoError(t, err)
	p, err := c.Classify(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, model.Prediction{Label: "positive", Score: 0.8}, p)

	c, err = classify.NewHTTPClassifier(srv.URL, "emotion-model", "", srv.Client(), nil)
	require.NoError(t, err)
	p, err = c.Classify(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, "joy", p.Label)

	c, err = classify.NewHTTPClassifier(srv.URL, "empty-model", "", srv.Client(), nil)
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), "great")
	assert.ErrorContains(t, err, "no labels")

	c, err = classify.NewHTTPClassifier(srv.URL, "cold-model", "", srv.Client(), nil)
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), "great")
	assert.ErrorContains(t, err, "503")
}

func TestNewServiceFromConfig(t *testing.T) {
	srv := inferenceServer(t)
	defer srv.Close()

	config := cloud.NewConfig()
	config.Classifier.Backend = cloud.BackendHTTP
	config.Classifier.Endpoint = srv.URL
	config.Classifier.SentimentModel = "sentiment-model"
	config.Classifier.EmotionModel = "emotion-model"
	config.Classifier.APIKeyEnv = "TEST_CLASSIFIER_TOKEN"
	t.Setenv("TEST_CLASSIFIER_TOKEN", "token")

	svc, err := classify.NewServiceFromConfig(config, nil)
	require.NoError(t, err)
	p, err := svc.Sentiment(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, "positive", p.Label)
	p, err = svc.Emotion(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, "joy", p.Label)

	gen := &fakeGenerator{reply: `{"label":"neutral","score":0.5}`}
	config.Classifier.Backend = cloud.BackendGenAI
	clients := &cloud.ServiceClients{AgentModels: map[string]*cloud.QuotaAwareGenerativeAIModel{"classifier": newAgent(gen)}}
	svc, err = classify.NewServiceFromConfig(config, clients)
	require.NoError(t, err)
	p, err = svc.Sentiment(context.Background(), "meh")
	require.NoError(t, err)
	assert.Equal(t, "neutral", p.Label)

	config.Classifier.AgentModel = "missing"
	_, err = classify.NewServiceFromConfig(config, clients)
	assert.Error(t, err)

	config.Classifier.Backend = "carrier-pigeon"
	_, err = classify.NewServiceFromConfig(config, clients)
	assert.Error(t, err)
}
