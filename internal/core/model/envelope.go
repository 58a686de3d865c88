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

package model

// Text sources for the analyzed utterance.
const (
	TextSourceSpeech     = "extracted_speech"
	TextSourceContextual = "contextual_analysis"
)

// ModelUsed is reported in every envelope.
const ModelUsed = "Enhanced ML Pipeline with Multi-Model Analysis"

// Prediction is the top label returned by a text classifier.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Label is an emotion or sentiment entry in the response. Entries sourced
// from the classifiers carry a real score; contextual entries are generated.
type Label struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Utterance is the single analyzed text span covering the whole clip.
type Utterance struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Text       string  `json:"text"`
	TextSource string  `json:"text_source"`
	Emotions   []Label `json:"emotions"`
	Sentiments []Label `json:"sentiments"`
}

// Analysis groups the utterances of an envelope.
type Analysis struct {
	Utterances []Utterance `json:"utterances"`
}

// ConfidenceScores are the per-modality values of the explainability block.
type ConfidenceScores struct {
	VisualAnalysis        float64 `json:"visual_analysis"`
	AudioAnalysis         float64 `json:"audio_analysis"`
	SpeechAnalysis        float64 `json:"speech_analysis"`
	EmotionClassification float64 `json:"emotion_classification"`
	SentimentAnalysis     float64 `json:"sentiment_analysis"`
}

// ModelExplanations is fixed prose describing each modality.
type ModelExplanations struct {
	Visual    string `json:"visual"`
	Audio     string `json:"audio"`
	Speech    string `json:"speech"`
	Emotion   string `json:"emotion"`
	Sentiment string `json:"sentiment"`
}

// FeatureImportance is fixed prose describing the main features.
type FeatureImportance struct {
	Brightness    string `json:"brightness"`
	Motion        string `json:"motion"`
	AudioEnergy   string `json:"audio_energy"`
	SpeechContent string `json:"speech_content"`
}

// Explainability is the synthetic explanation block. Its confidence scores
// come from a seeded generator and are not derived from model internals.
type Explainability struct {
	ConfidenceScores    ConfidenceScores  `json:"confidence_scores"`
	ModelExplanations   ModelExplanations `json:"model_explanations"`
	FeatureImportance   FeatureImportance `json:"feature_importance"`
	AnalysisReliability string            `json:"analysis_reliability"`
}

// Envelope is the body returned by a successful analysis.
type Envelope struct {
	VideoID         string         `json:"video_id"`
	Analysis        Analysis       `json:"analysis"`
	VideoAnalysis   FrameResult    `json:"video_analysis"`
	AudioAnalysis   AudioResult    `json:"audio_analysis"`
	SpeechAnalysis  SpeechResult   `json:"speech_analysis"`
	ProcessingTime  string         `json:"processing_time"`
	ModelUsed       string         `json:"model_used"`
	AnalysisSummary string         `json:"analysis_summary"`
	Explainability  Explainability `json:"explainability"`
}

// Health is the static capability descriptor served by the health endpoint.
type Health struct {
	Status       string   `json:"status"`
	ModelsLoaded bool     `json:"models_loaded"`
	Features     []string `json:"features"`
	Version      string   `json:"version"`
}
