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

package normalize

import (
	"errors"

	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// ErrNoRecipient means neither the form nor the configuration produced a
// destination address. This is a configuration or form-logic problem, not the
// submitter's fault.
var ErrNoRecipient = errors.New("no recipient email address resolved")

// sendToOther is the sentinel the form uses when the submitter picks a
// free-text destination.
const sendToOther = "other"

// ResolveRecipient derives the destination address from the canonical record.
//
//   - send_to == "other" with a non-empty send_to_other uses that address
//   - any other non-empty send_to is used directly
//   - otherwise the configured fallback applies (including "other" with an
//     empty free-text field)
func ResolveRecipient(record models.CanonicalRecord, fallback string) (string, error) {
	sendTo := record.Get("send_to")
	other := record.Get("send_to_other")

	var recipient string
	switch {
	case sendTo == sendToOther && other != "":
		recipient = other
	case sendTo != "" && sendTo != sendToOther:
		recipient = sendTo
	default:
		recipient = fallback
	}

	if recipient == "" {
		return "", ErrNoRecipient
	}
	return recipient, nil
}
