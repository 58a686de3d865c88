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

// Package cloud defines the application configuration, loaded from TOML
// files, together with the clients for the generative AI services used by the
// speech and classification backends.
//
// This file centralizes the configuration structs.
//
// Structs:
//   - Application: service identity, Google Cloud project and log file.
//   - Server: HTTP listener and upload limits.
//   - Cors: origin allow-list for the frontend.
//   - Analysis: ffmpeg tooling and extractor behavior.
//   - Speech: speech-to-text backend selection and timeouts.
//   - Classifier: sentiment / emotion backend selection and timeouts.
//   - VertexAiLLMModel: generation settings for a named Gemini model.
//   - PromptTemplates: text templates for the Gemini prompts.
//   - Telemetry: exporter selection.
//   - Config: the top-level struct aggregating everything above.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking. Transcripts and narratives
// are classified as-is, so a blocked response would only surface as a
// classification failure.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Backend names accepted by the speech and classifier sections.
const (
	BackendGenAI = "genai" // Gemini through google.golang.org/genai.
	BackendHTTP  = "http"  // A remote inference service reached over HTTP.
	BackendNone  = "none"  // Speech only: the service is reported unavailable.
)

// Application holds service-wide identity settings.
type Application struct {
	Name            string `toml:"name"`              // Service name reported to telemetry.
	GoogleProjectId string `toml:"google_project_id"` // Project for Vertex AI and the GCP exporters.
	GoogleLocation  string `toml:"location"`          // Vertex AI location.
	GenAIBackend    string `toml:"genai_backend"`     // "vertex" or "gemini_api".
	APIKeyEnv       string `toml:"api_key_env"`       // Env var holding the Gemini API key when GenAIBackend is "gemini_api".
	LogFile         string `toml:"log_file"`          // Append-only log file.
}

// Server holds the HTTP listener settings.
type Server struct {
	Port                   int   `toml:"port"`
	ReadTimeoutSeconds     int   `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int   `toml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int   `toml:"shutdown_timeout_seconds"`
	MaxUploadMB            int64 `toml:"max_upload_mb"` // Multipart memory limit; larger parts spill to disk.
}

// Cors holds the cross-origin policy. Origins may contain a single "*"
// wildcard, e.g. "https://*.vercel.app".
type Cors struct {
	AllowOrigins []string `toml:"allow_origins"`
	AllowMethods []string `toml:"allow_methods"`
	AllowHeaders []string `toml:"allow_headers"`
}

// Analysis configures the extractors.
type Analysis struct {
	FFmpegPath           string `toml:"ffmpeg_path"`
	FFprobePath          string `toml:"ffprobe_path"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`       // Per extractor bound on ffmpeg work.
	ConcurrentExtractors bool   `toml:"concurrent_extractors"` // Run frame, audio and speech extraction in parallel.
	FrameMaxWidth        int    `toml:"frame_max_width"`       // Downscale wider frames before analysis; 0 keeps the original size.
	AudioSampleRate      int    `toml:"audio_sample_rate"`
	TempFilePrefix       string `toml:"temp_file_prefix"`
}

// Speech configures the speech transcriber.
type Speech struct {
	Backend            string  `toml:"backend"`     // genai, http or none.
	AgentModel         string  `toml:"agent_model"` // Key into AgentModels for the genai backend.
	Endpoint           string  `toml:"endpoint"`    // URL for the http backend.
	APIKeyEnv          string  `toml:"api_key_env"` // Env var with a bearer token for the http backend.
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	SampleRate         int     `toml:"sample_rate"`
	CalibrationSeconds float64 `toml:"calibration_seconds"`
}

// Classifier configures the sentiment and emotion classifiers.
type Classifier struct {
	Backend         string   `toml:"backend"`          // genai or http.
	AgentModel      string   `toml:"agent_model"`      // Key into AgentModels for the genai backend.
	Endpoint        string   `toml:"endpoint"`         // Base URL for the http backend; the model name is appended.
	APIKeyEnv       string   `toml:"api_key_env"`      // Env var with a bearer token for the http backend.
	SentimentModel  string   `toml:"sentiment_model"`  // Model name for the http backend.
	EmotionModel    string   `toml:"emotion_model"`    // Model name for the http backend.
	SentimentLabels []string `toml:"sentiment_labels"` // Allowed sentiment labels.
	EmotionLabels   []string `toml:"emotion_labels"`   // Allowed emotion labels.
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	MaxInputChars   int      `toml:"max_input_chars"`
	RateLimit       int      `toml:"rate_limit"` // Requests per second for the http backend.
}

// VertexAiLLMModel holds the generation settings of a named Gemini model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"` // Requests per second.
}

// PromptTemplates are text/template sources used by the genai backends.
type PromptTemplates struct {
	Sentiment     string `toml:"sentiment"`
	Emotion       string `toml:"emotion"`
	Transcription string `toml:"transcription"`
}

// Telemetry selects where traces and metrics go.
type Telemetry struct {
	Exporter string `toml:"exporter"` // "gcp" or "none".
}

// Config is the top-level configuration.
type Config struct {
	Application     Application                 `toml:"application"`
	Server          Server                      `toml:"server"`
	Cors            Cors                        `toml:"cors"`
	Analysis        Analysis                    `toml:"analysis"`
	Speech          Speech                      `toml:"speech"`
	Classifier      Classifier                  `toml:"classifier"`
	AgentModels     map[string]VertexAiLLMModel `toml:"agent_models"`
	PromptTemplates PromptTemplates             `toml:"prompt_templates"`
	Telemetry       Telemetry                   `toml:"telemetry"`
}

// NewConfig returns a Config populated with the defaults the TOML files
// override.
func NewConfig() *Config {
	return &Config{
		Application: Application{
			Name:         "video-sentiment-analyzer",
			GenAIBackend: "gemini_api",
			APIKeyEnv:    "GEMINI_API_KEY",
			LogFile:      "ml_analysis.log",
		},
		Server: Server{
			Port:                   5000,
			ReadTimeoutSeconds:     60,
			WriteTimeoutSeconds:    300,
			ShutdownTimeoutSeconds: 5,
			MaxUploadMB:            64,
		},
		Cors: Cors{
			AllowOrigins: []string{
				"http://localhost:3000",
				"https://*.vercel.app",
				"https://*.railway.app",
				"https://*.onrender.com",
				"https://*.herokuapp.com",
			},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		},
		Analysis: Analysis{
			FFmpegPath:           "ffmpeg",
			FFprobePath:          "ffprobe",
			TimeoutSeconds:       120,
			ConcurrentExtractors: true,
			AudioSampleRate:      22050,
			TempFilePrefix:       "video-upload-",
		},
		Speech: Speech{
			Backend:            BackendNone,
			AgentModel:         "transcriber",
			TimeoutSeconds:     60,
			SampleRate:         16000,
			CalibrationSeconds: 0.5,
		},
		Classifier: Classifier{
			Backend:         BackendGenAI,
			AgentModel:      "classifier",
			SentimentModel:  "cardiffnlp/twitter-roberta-base-sentiment-latest",
			EmotionModel:    "j-hartmann/emotion-english-distilroberta-base",
			SentimentLabels: []string{"negative", "neutral", "positive"},
			EmotionLabels:   []string{"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise"},
			TimeoutSeconds:  30,
			MaxInputChars:   2000,
			RateLimit:       5,
		},
		AgentModels: make(map[string]VertexAiLLMModel),
		Telemetry:   Telemetry{Exporter: "none"},
	}
}
