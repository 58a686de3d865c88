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

// Package api contains the HTTP route definitions for the server.
//
// Routes:
//   - POST /analyze: runs the video analysis workflow on the multipart field
//     "video" and returns the response envelope.
//   - GET /health: returns the static capability descriptor.
//
// Every request passes through the recovery, request id, OpenTelemetry and
// CORS middleware, in that order.
package api

import (
	"context"
	"io"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/model"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Analyzer runs the analysis of one upload. *workflow.VideoAnalysisWorkflow
// implements it.
type Analyzer interface {
	Analyze(ctx context.Context, fileName string, body io.Reader) (*model.Envelope, error)
}

// NewRouter builds the gin engine serving the API.
//
// Inputs:
//   - config: The application configuration; the server, cors and
//     application sections are read.
//   - analyzer: The workflow executed by the analyze endpoint.
//
// Outputs:
//   - *gin.Engine: The configured engine, ready to be used as an http.Handler.
func NewRouter(config *cloud.Config, analyzer Analyzer) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = config.Server.MaxUploadMB << 20

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(otelgin.Middleware(config.Application.Name))
	r.Use(cors.New(CorsConfig(config.Cors)))

	AnalysisRouter(r, analyzer)
	HealthRouter(r)
	return r
}
