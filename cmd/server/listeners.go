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

// This file runs the HTTP listener and its graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
)

// Listen serves handler on the configured port until ctx is cancelled, then
// gives in-flight requests server.shutdown_timeout_seconds to finish.
//
// Inputs:
//   - ctx: Cancelled on SIGINT or SIGTERM.
//   - config: The server section supplies the port and timeouts.
//   - handler: The API router.
//
// Outputs:
//   - error: A listener failure; a clean shutdown returns nil.
func Listen(ctx context.Context, config *cloud.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(config.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	slog.Info("Server Ready", "port", config.Server.Port)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("failed to listen", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutdown Server ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
		return err
	}
	slog.Info("Server exiting")
	return nil
}
