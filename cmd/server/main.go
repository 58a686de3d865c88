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

// Package main is the entry point for the video sentiment analyzer.
//
// The binary is a cobra CLI with two commands:
//   - serve: runs the HTTP API (POST /analyze, GET /health) until SIGINT or
//     SIGTERM, then shuts down gracefully.
//   - analyze <file>: runs the same workflow on a local file and prints the
//     response envelope as JSON.
//
// Both commands load the TOML configuration, set up logging and telemetry
// and build the analysis workflow through InitState.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jaycherian/video-sentiment-analyzer/internal/api"
	"github.com/spf13/cobra"
)

// Flags shared by the commands.
var (
	runtimeFlag string
	portFlag    int
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "video-sentiment-analyzer",
		Short:        "Sentiment and emotion analysis for short videos",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&runtimeFlag, "runtime", "", "configuration runtime, selects configs/.env.<runtime>.toml (default local)")
	root.AddCommand(newServeCommand(), newAnalyzeCommand())
	return root
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := InitState(ctx, runtimeFlag); err != nil {
				return err
			}
			defer state.Close()

			if portFlag > 0 {
				state.config.Server.Port = portFlag
			}
			router := api.NewRouter(state.config, state.workflow)
			return Listen(ctx, state.config, router)
		},
	}
	cmd.Flags().IntVar(&portFlag, "port", 0, "listen port, overrides server.port")
	return cmd
}

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a local video file and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := InitState(ctx, runtimeFlag); err != nil {
				return err
			}
			defer state.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			envelope, err := state.workflow.Analyze(ctx, filepath.Base(args[0]), file)
			if err != nil {
				slog.Error("analysis failed", "file", args[0], "error", err)
				return fmt.Errorf("processing failed: %w", err)
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(envelope)
		},
	}
}
