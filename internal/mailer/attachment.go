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
	"encoding/base64"
	"log/slog"

	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// fallbackMimeType applies when neither the form part nor the upstream
// reference declared a content type.
const fallbackMimeType = "application/octet-stream"

// PackageAttachments converts raw blobs into the provider's attachment shape:
// base64 content, declared mime type, disposition "attachment".
//
// The per-file ceiling was already enforced at decode time; this enforces the
// total-across-all-attachments ceiling (maxTotalBytes, zero disables it) by
// dropping and logging the excess rather than failing the submission.
//
// Every blob is released exactly once, whether it was packaged or dropped, so
// a partial failure never leaks backing storage.
func PackageAttachments(attachments []*models.RawAttachment, maxTotalBytes int64) []models.PackagedAttachment {
	packaged := make([]models.PackagedAttachment, 0, len(attachments))

	var total int64
	for _, att := range attachments {
		if att == nil {
			continue
		}

		size := int64(len(att.Data))
		if maxTotalBytes > 0 && total+size > maxTotalBytes {
			slog.Warn("attachment dropped, total size ceiling reached",
				"filename", att.Filename,
				"size", size,
				"total_limit", maxTotalBytes,
			)
			att.Release()
			continue
		}
		total += size

		mimeType := att.MimeType
		if mimeType == "" {
			mimeType = fallbackMimeType
		}

		packaged = append(packaged, models.PackagedAttachment{
			Filename:      att.Filename,
			MimeType:      mimeType,
			Base64Content: base64.StdEncoding.EncodeToString(att.Data),
			Disposition:   "attachment",
		})
		att.Release()
	}

	return packaged
}
