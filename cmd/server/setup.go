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

// This file contains the setup and initialization logic for the application's
// state. It creates a centralized state manager holding the configuration,
// the generative AI clients and the analysis workflow.
//
// Functions:
//   - SetupOS: Configures the environment variables read by the configuration
//     loader, pointing to the configs directory and the runtime.
//   - GetConfig: Loads the application's configuration from TOML files.
//   - InitState: Creates logging, telemetry, service clients and the workflow.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/workflow"
	"github.com/jaycherian/video-sentiment-analyzer/internal/telemetry"
	"github.com/joho/godotenv"
)

// Defaults applied by SetupOS when the environment does not say otherwise.
const (
	defaultConfigDir = "configs"
	defaultRuntime   = "local"
	secretsFile      = ".env"
)

// StateManager holds all the shared dependencies for the application.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	workflow *workflow.VideoAnalysisWorkflow
	logFile  io.Closer
	shutdown func(context.Context) error
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables that the configuration loader uses
// to find the TOML files. Values already present in the environment win, so a
// deployment can point at another directory or runtime. Secrets such as API
// keys are read from a ".env" file when one exists.
//
// Inputs:
//   - runtime: The runtime selected on the command line; "" keeps the
//     environment or falls back to "local".
func SetupOS(runtime string) error {
	if err := godotenv.Load(secretsFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", secretsFile, err)
	}
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, defaultConfigDir); err != nil {
			return err
		}
	}
	if runtime == "" {
		runtime = os.Getenv(cloud.EnvConfigRuntime)
	}
	if runtime == "" {
		runtime = defaultRuntime
	}
	return os.Setenv(cloud.EnvConfigRuntime, runtime)
}

// GetConfig loads the application configuration: the defaults of NewConfig,
// overridden by configs/.env.toml and then by configs/.env.<runtime>.toml.
func GetConfig(runtime string) (*cloud.Config, error) {
	if err := SetupOS(runtime); err != nil {
		return nil, fmt.Errorf("failed to setup environment: %w", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// InitState initializes the entire application state.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Sets up logging to stdout and the configured log file.
//  3. Initializes OpenTelemetry tracing and metrics.
//  4. Creates the generative AI clients required by the configured backends.
//  5. Builds the video analysis workflow.
func InitState(ctx context.Context, runtime string) error {
	config, err := GetConfig(runtime)
	if err != nil {
		return err
	}
	state.config = config

	state.logFile, err = telemetry.SetupLogging(config.Application.LogFile, slog.LevelInfo)
	if err != nil {
		return err
	}
	slog.Info("Logging initialized", "log_file", config.Application.LogFile)

	state.shutdown, err = telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to setup OpenTelemetry: %w", err)
	}
	slog.Info("Tracing initialized", "exporter", config.Telemetry.Exporter)

	state.cloud, err = cloud.NewServiceClients(ctx, config)
	if err != nil {
		return err
	}

	state.workflow, err = workflow.NewVideoAnalysisPipeline(config, state.cloud)
	if err != nil {
		return err
	}
	slog.Info("Initialized State",
		"speech_backend", config.Speech.Backend,
		"classifier_backend", config.Classifier.Backend,
		"concurrent_extractors", config.Analysis.ConcurrentExtractors)
	return nil
}

// Close flushes telemetry and releases the clients and the log file. It is
// safe to call after a partial InitState.
func (s *StateManager) Close() {
	if s.shutdown != nil {
		if err := s.shutdown(context.Background()); err != nil {
			slog.Error("failed to shutdown telemetry", "error", err)
		}
	}
	if s.cloud != nil {
		s.cloud.Close()
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}
