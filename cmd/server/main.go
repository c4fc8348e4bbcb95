// Copyright (c) 2026 Greg Mettam
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Galvins instruction form service.
//
// Entry point for the self-hosted HTTP deployment. It:
//  1. Loads configuration from the environment
//  2. Loads the form definition (embedded default or FORM_SPEC_PATH)
//  3. Builds the SendGrid sender once with the process credential
//  4. Serves the form submission endpoint plus a health check
//  5. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GMettam/galvins-instruction-form/internal/config"
	"github.com/GMettam/galvins-instruction-form/internal/decode"
	"github.com/GMettam/galvins-instruction-form/internal/form"
	"github.com/GMettam/galvins-instruction-form/internal/mailer"
	"github.com/GMettam/galvins-instruction-form/internal/submission"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting instruction form service")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	spec, err := form.Load(cfg.FormSpecPath)
	if err != nil {
		slog.Error("failed to load form definition", "error", err, "path", cfg.FormSpecPath)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"labels", len(spec.Labels),
		"default_recipient", cfg.DefaultRecipient != "",
		"parse_timeout", cfg.ParseTimeout,
	)

	sender := mailer.NewSendGridSender(cfg.APIKey)
	fetcher := decode.NewFetcher(nil, cfg.MaxFileBytes)
	handler := submission.NewHandler(cfg, spec, fetcher, sender)

	mux := http.NewServeMux()
	mux.HandleFunc("/submit", submitHandler(cfg, handler))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("instruction form service listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("instruction form service stopped")
}

// submitHandler adapts the HTTP request into the transport-neutral submission
// request. Body reads are capped one byte past the configured ceiling so the
// decoder can distinguish "at the limit" from "over it".
func submitHandler(cfg *config.Config, h *submission.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, cfg.MaxBodyBytes+1))
		if err != nil {
			slog.Warn("failed to read request body", "error", err)
			http.Error(w, "The form data could not be read.", http.StatusBadRequest)
			return
		}

		headers := make(map[string]string, len(r.Header))
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}

		resp := h.Handle(r.Context(), &submission.Request{
			Method:  r.Method,
			Headers: headers,
			Body:    string(body),
		})

		for name, value := range resp.Headers {
			w.Header().Set(name, value)
		}
		w.WriteHeader(resp.StatusCode)
		io.WriteString(w, resp.Body)
	}
}
