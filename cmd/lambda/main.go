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

// Serverless deployment of the instruction form service. API Gateway proxies
// the form POST here; configuration and the SendGrid sender are built once per
// container and reused across invocations.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/GMettam/galvins-instruction-form/internal/config"
	"github.com/GMettam/galvins-instruction-form/internal/decode"
	"github.com/GMettam/galvins-instruction-form/internal/form"
	"github.com/GMettam/galvins-instruction-form/internal/mailer"
	"github.com/GMettam/galvins-instruction-form/internal/submission"
)

var handler *submission.Handler

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

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

	sender := mailer.NewSendGridSender(cfg.APIKey)
	fetcher := decode.NewFetcher(nil, cfg.MaxFileBytes)
	handler = submission.NewHandler(cfg, spec, fetcher, sender)
}

func handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp := handler.Handle(ctx, &submission.Request{
		Method:          event.HTTPMethod,
		Headers:         event.Headers,
		Body:            event.Body,
		IsBase64Encoded: event.IsBase64Encoded,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

func main() {
	lambda.Start(handle)
}
