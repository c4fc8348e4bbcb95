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

// Package mailer packages attachments and dispatches the assembled
// notification through SendGrid.
package mailer

import (
	"context"

	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// Message is the fully assembled outbound notification.
type Message struct {
	To          string
	FromEmail   string
	FromName    string
	Subject     string
	Text        string
	HTML        string
	Attachments []models.PackagedAttachment
}

// Sender delivers one message. Implementations must attempt delivery exactly
// once per call; retry policy belongs to the caller or the provider.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
