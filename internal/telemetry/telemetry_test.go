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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func decode(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(line, &out))
	return out
}

func TestLogHandlerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewLogHandler(&buf, slog.LevelDebug))

	ctx := telemetry.ContextWithRequestID(context.Background(), "req-42")
	logger.WarnContext(ctx, "speech service unavailable", "video_id", "abcd1234")

	record := decode(t, buf.Bytes())
	assert.Equal(t, "WARNING", record["severity"])
	assert.Equal(t, "speech service unavailable", record["message"])
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, "abcd1234", record["video_id"])
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "level")
}

func TestLogHandlerAddsTraceFields(t *testing.T) {
	config := cloud.NewConfig()
	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	require.NoError(t, err)
	defer shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "span")
	defer span.End()

	var buf bytes.Buffer
	slog.New(telemetry.NewLogHandler(&buf, slog.LevelInfo)).With("stage", "frames").InfoContext(ctx, "hello")

	record := decode(t, buf.Bytes())
	assert.Equal(t, span.SpanContext().TraceID().String(), record["logging.googleapis.com/trace"])
	assert.Equal(t, "frames", record["stage"])
	assert.NotContains(t, record, "request_id")
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, telemetry.RequestIDFromContext(context.Background()))
	assert.Equal(t, "x", telemetry.RequestIDFromContext(telemetry.ContextWithRequestID(context.Background(), "x")))
}

func TestSetupLoggingAppends(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	defer log.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "ml_analysis.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	closer, err := telemetry.SetupLogging(path, slog.LevelInfo)
	require.NoError(t, err)
	slog.Info("Processing video: clip.mp4 (ID: 1234abcd)")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "existing", lines[0])
	assert.Equal(t, "Processing video: clip.mp4 (ID: 1234abcd)", decode(t, []byte(lines[1]))["message"])
}

func TestSetupLoggingBadPath(t *testing.T) {
	_, err := telemetry.SetupLogging(filepath.Join(t.TempDir(), "missing", "app.log"), slog.LevelInfo)
	assert.Error(t, err)
}

func TestSetupOpenTelemetryExporters(t *testing.T) {
	config := cloud.NewConfig()
	config.Telemetry.Exporter = "none"
	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	config.Telemetry.Exporter = "jaeger"
	_, err = telemetry.SetupOpenTelemetry(context.Background(), config)
	assert.ErrorContains(t, err, "unknown telemetry exporter")
}
