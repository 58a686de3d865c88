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

// Package workflow_test contains integration tests for the video analysis
// workflow. This file provides the setup and teardown shared by every test in
// the package: configuration, logging and telemetry are initialized once in
// TestMain.
package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/telemetry"
	test "github.com/jaycherian/video-sentiment-analyzer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	ctx    context.Context // The root context for all tests in the suite.
	config *cloud.Config   // The application configuration loaded from test files.
)

const tName = "github.com/jaycherian/video-sentiment-analyzer/tests/workflow"

var logger = otelslog.NewLogger(tName)

func TestMain(m *testing.M) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())

	// Load application configuration from `.env.test.toml`.
	config = test.GetConfig()

	logFile, err := telemetry.SetupLogging("", slog.LevelDebug)
	if err != nil {
		panic(err)
	}

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		panic(err)
	}

	logger.Info("completed test setup")

	exitCode := m.Run()

	// os.Exit skips deferred calls.
	teardown(ctx, cancel, shutdown, logFile)
	os.Exit(exitCode)
}

// teardown flushes telemetry, cancels the suite context and closes the log
// file.
func teardown(ctx context.Context, cancel context.CancelFunc, shutdown func(context.Context) error, logFile io.Closer) {
	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shutdown telemetry", "error", err)
	}
	cancel()
	if err := logFile.Close(); err != nil {
		logger.Error("failed to close log file", "error", err)
	}
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestTeardownReleasesSuiteResources(t *testing.T) {
	local, cancel := context.WithCancel(context.Background())
	file := &closeRecorder{}
	flushed := false

	teardown(local, cancel, func(context.Context) error {
		flushed = true
		return errors.New("exporter offline")
	}, file)

	assert.True(t, flushed)
	assert.True(t, file.closed)
	assert.ErrorIs(t, local.Err(), context.Canceled)
}
