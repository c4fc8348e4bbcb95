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

// Package submission orchestrates one form submission end to end: decode the
// transport body, normalize fields, resolve the recipient, render the
// notification, package attachments, and hand the assembled message to the
// mail sender.
//
// Each invocation is one independent unit of work. Exactly one send is
// attempted per received submission; duplicate transport retries can cause
// duplicate emails, which is accepted rather than solved here.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/GMettam/galvins-instruction-form/internal/config"
	"github.com/GMettam/galvins-instruction-form/internal/decode"
	"github.com/GMettam/galvins-instruction-form/internal/form"
	"github.com/GMettam/galvins-instruction-form/internal/mailer"
	"github.com/GMettam/galvins-instruction-form/internal/models"
	"github.com/GMettam/galvins-instruction-form/internal/normalize"
	"github.com/GMettam/galvins-instruction-form/internal/render"
)

// Outcome labels for the observability side channel. They mirror the terminal
// states of the submission state machine.
const (
	outcomeDecodeError    = "decode_error"
	outcomeRejectedSpam   = "rejected_spam"
	outcomeRecipientError = "recipient_error"
	outcomeSent           = "sent"
	outcomeSendFailed     = "send_failed"
)

// Handler processes inbound submissions.
type Handler struct {
	cfg        *config.Config
	normalizer *normalize.Normalizer
	renderer   *render.Renderer
	fetcher    *decode.Fetcher
	sender     mailer.Sender
}

// NewHandler wires the pipeline. The sender credential is established once at
// process start; the handler treats it as read-only.
func NewHandler(cfg *config.Config, spec *form.Spec, fetcher *decode.Fetcher, sender mailer.Sender) *Handler {
	return &Handler{
		cfg:        cfg,
		normalizer: normalize.New(spec, cfg.MaxFieldLength),
		renderer:   render.New(spec, cfg.DisplayLimit),
		fetcher:    fetcher,
		sender:     sender,
	}
}

// Handle runs one submission through the pipeline and maps the terminal state
// to a transport response.
func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	if !strings.EqualFold(req.Method, "POST") {
		return respond(req, 405, "Method Not Allowed", "Only POST submissions are accepted.")
	}

	id := uuid.New().String()
	log := slog.With("submission_id", id)

	// The parse phase (decode plus remote attachment fetches) runs under its
	// own deadline so a pathological body fails the invocation instead of
	// hanging it. The send itself is bounded by the invocation context.
	parseCtx, cancel := context.WithTimeout(ctx, h.cfg.ParseTimeout)
	defer cancel()

	result, err := decode.Decode(parseCtx, req.Body, req.IsBase64Encoded, req.Header("Content-Type"), decode.Options{
		MaxBodyBytes: h.cfg.MaxBodyBytes,
		MaxFileBytes: h.cfg.MaxFileBytes,
	})
	if err != nil {
		log.Warn("submission rejected", "outcome", outcomeDecodeError, "error", err)
		return respond(req, 400, "Invalid Submission", "The form data could not be read. Please go back and try again.")
	}

	// Whatever happens from here, no blob may outlive the invocation.
	// Release is idempotent, so this is safe alongside packaging.
	attachments := result.Attachments
	defer func() {
		for _, att := range attachments {
			att.Release()
		}
	}()

	record, err := h.normalizer.Normalize(result.Fields)
	if err != nil {
		if errors.Is(err, normalize.ErrSpamRejected) {
			// Deliberately indistinguishable from a generic bad request so
			// automated senders learn nothing.
			log.Info("submission rejected", "outcome", outcomeRejectedSpam)
			return respond(req, 400, "Invalid Submission", "The form data could not be read. Please go back and try again.")
		}
		log.Error("normalization failed", "error", err)
		return respond(req, 500, "Error", "Something went wrong processing your submission.")
	}

	recipient, err := normalize.ResolveRecipient(record, h.cfg.DefaultRecipient)
	if err != nil {
		log.Error("submission failed", "outcome", outcomeRecipientError, "error", err)
		return respond(req, 500, "Error", "Something went wrong processing your submission.")
	}

	// Envelope submissions carry attachments by reference; fetch them now,
	// concurrently, dropping individual failures.
	if len(result.Refs) > 0 {
		attachments = append(attachments, h.fetcher.FetchAll(parseCtx, result.Refs)...)
	}

	packaged := mailer.PackageAttachments(attachments, h.cfg.MaxTotalAttachmentBytes)
	notification := h.renderer.Render(record, len(packaged))

	msg := &mailer.Message{
		To:          recipient,
		FromEmail:   h.cfg.SenderEmail,
		FromName:    h.cfg.SenderName,
		Subject:     h.subject(record),
		Text:        notification.Text,
		HTML:        notification.HTML,
		Attachments: packaged,
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		log.Error("submission failed", "outcome", outcomeSendFailed, "recipient", recipient, "error", err)
		return respond(req, 500, "Error", "The notification email could not be sent. Please try again later.")
	}

	log.Info("submission processed",
		"outcome", outcomeSent,
		"recipient", recipient,
		"fields", len(record),
		"attachments", len(packaged),
	)
	return respond(req, 200, "Success!", fmt.Sprintf("Form submitted to %s.", recipient))
}

// subject derives the subject line from the signature field, with a fallback
// for unsigned submissions.
func (h *Handler) subject(record models.CanonicalRecord) string {
	sig := record.Get("signature")
	if sig == "" {
		sig = "Unknown"
	}
	return h.cfg.SubjectPrefix + " - " + sig
}
