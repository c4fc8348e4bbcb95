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

// Package models defines the data structures shared across the submission
// pipeline: decoded form fields, attachment blobs, the canonical record, and
// the rendered notification handed to the mail sender.
package models

// RawField is a single decoded form field before normalization.
//
// IsArray is decided once at decode time: either the source field name carried
// a trailing "[]" marker or the same name appeared more than once (checkbox
// groups). Values is never empty for a field that exists in the map — a field
// with no value at all is simply absent.
type RawField struct {
	Name    string
	Values  []string
	IsArray bool
}

// RawAttachment is a decoded attachment blob produced during multipart parsing
// or fetched from a webhook envelope file reference.
//
// The decoder owns the blob until it is handed to the attachment packager,
// which consumes it and calls Release. Release frees any backing storage and
// is safe to call more than once; only the first call has effect.
type RawAttachment struct {
	FieldName string
	Filename  string
	MimeType  string
	Data      []byte

	release  func()
	released bool
}

// NewRawAttachment creates an attachment blob. The release callback frees any
// backing temporary storage; pass nil when the data is purely in-memory.
func NewRawAttachment(fieldName, filename, mimeType string, data []byte, release func()) *RawAttachment {
	return &RawAttachment{
		FieldName: fieldName,
		Filename:  filename,
		MimeType:  mimeType,
		Data:      data,
		release:   release,
	}
}

// Release frees the backing storage for the blob. Idempotent.
func (a *RawAttachment) Release() {
	if a.released {
		return
	}
	a.released = true
	if a.release != nil {
		a.release()
	}
	a.Data = nil
}

// Released reports whether Release has been called.
func (a *RawAttachment) Released() bool {
	return a.released
}

// CanonicalRecord is the normalized, alias-resolved view of a submission.
// Array-valued fields are stored as a single ", "-joined string. Keys with
// empty values are never present.
type CanonicalRecord map[string]string

// Get returns the value for key, or "" when the key is absent.
func (r CanonicalRecord) Get(key string) string {
	return r[key]
}

// PackagedAttachment is an attachment encoded in the exact shape the mail
// provider requires.
type PackagedAttachment struct {
	Filename      string
	MimeType      string
	Base64Content string
	Disposition   string
}

// RenderedNotification holds the human-readable projection of a canonical
// record. Built once per submission, never persisted.
type RenderedNotification struct {
	HTML string
	Text string
}
