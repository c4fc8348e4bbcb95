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

package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers messages through the SendGrid v3 API. The API key
// is fixed at construction — once per process — and never mutated.
type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGridSender creates a sender with the given API key.
func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
	}
}

// Send attempts delivery exactly once. Provider diagnostics are logged, not
// returned verbatim, so they never leak into a transport response.
func (s *SendGridSender) Send(ctx context.Context, msg *Message) error {
	resp, err := s.client.SendWithContext(ctx, buildMail(msg))
	if err != nil {
		slog.Error("sendgrid request failed", "error", err)
		return fmt.Errorf("sendgrid send: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("sendgrid rejected message",
			"status", resp.StatusCode,
			"body", resp.Body,
		)
		return fmt.Errorf("sendgrid send: HTTP %d", resp.StatusCode)
	}

	slog.Info("sendgrid accepted message",
		"status", resp.StatusCode,
		"to", msg.To,
		"attachments", len(msg.Attachments),
	)
	return nil
}

// buildMail converts a Message into the SendGrid v3 shape.
func buildMail(msg *Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(msg.FromName, msg.FromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	m.AddPersonalizations(p)

	// Content order matters to SendGrid: text/plain before text/html.
	if msg.Text != "" {
		m.AddContent(mail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	for _, a := range msg.Attachments {
		att := mail.NewAttachment()
		att.SetContent(a.Base64Content)
		att.SetType(a.MimeType)
		att.SetFilename(a.Filename)
		att.SetDisposition(a.Disposition)
		m.AddAttachment(att)
	}

	return m
}
