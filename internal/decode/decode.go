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

// Package decode turns a raw transport body into flat form fields and
// attachment blobs.
//
// Three decode strategies exist because submissions can arrive from three
// upstream integrations: a browser posting application/x-www-form-urlencoded,
// a browser posting multipart/form-data with file inputs, and a webhook
// delivering a JSON envelope. Dispatch is purely on the declared content
// type — never on heuristics over the raw bytes.
package decode

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// Error reports a malformed, missing, or oversized request body. It is always
// the submitter's fault, never the service's.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// AttachmentRef points at an attachment delivered by reference (webhook
// envelopes carry URLs, not inline bytes). Fetching the bytes is a separate,
// fallible step — see Fetcher.
type AttachmentRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

// Result is the flat intermediate form of one submission.
type Result struct {
	Fields      map[string]models.RawField
	Attachments []*models.RawAttachment
	Refs        []AttachmentRef
}

// Options carries the decode size ceilings.
type Options struct {
	MaxBodyBytes int64
	MaxFileBytes int64
}

var errTooLarge = errors.New("size limit exceeded")

// Decode parses the raw transport body according to its declared content
// type. The body may be base64-encoded by the transport.
func Decode(ctx context.Context, body string, isBase64 bool, contentType string, opts Options) (*Result, error) {
	if body == "" {
		return nil, &Error{Reason: "no form data received"}
	}

	var raw []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, &Error{Reason: "invalid base64 body", Err: err}
		}
		raw = decoded
	} else {
		raw = []byte(body)
	}

	if opts.MaxBodyBytes > 0 && int64(len(raw)) > opts.MaxBodyBytes {
		return nil, &Error{Reason: fmt.Sprintf("request body exceeds %d bytes", opts.MaxBodyBytes)}
	}

	mediaType, params, _ := mime.ParseMediaType(contentType)

	switch {
	case mediaType == "multipart/form-data":
		return decodeMultipart(ctx, raw, params["boundary"], opts)
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return decodeEnvelope(raw)
	default:
		// Plain form posts, including an absent content type.
		return decodeURLEncoded(raw)
	}
}

// addField merges one or more values into the field map. A trailing "[]" on
// the name (checkbox groups) is stripped and marks the field as an array, as
// does the same name recurring.
func addField(fields map[string]models.RawField, name string, values ...string) {
	isArray := strings.HasSuffix(name, "[]")
	name = strings.TrimSuffix(name, "[]")
	if name == "" || len(values) == 0 {
		return
	}

	f, exists := fields[name]
	if !exists {
		f = models.RawField{Name: name}
	}
	f.Values = append(f.Values, values...)
	f.IsArray = f.IsArray || isArray || len(f.Values) > 1
	fields[name] = f
}

func decodeURLEncoded(raw []byte) (*Result, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, &Error{Reason: "malformed url-encoded body", Err: err}
	}

	fields := make(map[string]models.RawField, len(values))
	for name, vals := range values {
		addField(fields, name, vals...)
	}

	return &Result{Fields: fields}, nil
}

func decodeMultipart(ctx context.Context, raw []byte, boundary string, opts Options) (*Result, error) {
	if boundary == "" {
		return nil, &Error{Reason: "multipart body missing boundary"}
	}

	fields := make(map[string]models.RawField)
	var attachments []*models.RawAttachment

	releaseAll := func() {
		for _, a := range attachments {
			a.Release()
		}
	}

	mr := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		// Bound parse time: a deadline on the invocation context fails the
		// submission rather than hanging on a pathological body.
		if err := ctx.Err(); err != nil {
			releaseAll()
			return nil, &Error{Reason: "parse deadline exceeded", Err: err}
		}

		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			releaseAll()
			return nil, &Error{Reason: "malformed multipart body", Err: err}
		}

		name := part.FormName()
		if part.FileName() != "" {
			data, err := readLimited(part, opts.MaxFileBytes)
			part.Close()
			if err != nil {
				releaseAll()
				if errors.Is(err, errTooLarge) {
					return nil, &Error{Reason: fmt.Sprintf("attachment %q exceeds %d bytes", part.FileName(), opts.MaxFileBytes)}
				}
				return nil, &Error{Reason: "read attachment part", Err: err}
			}
			// A file input left empty still produces a part with a filename.
			if len(data) == 0 {
				continue
			}
			attachments = append(attachments, models.NewRawAttachment(
				name,
				path.Base(part.FileName()),
				part.Header.Get("Content-Type"),
				data,
				nil,
			))
			continue
		}

		data, err := readLimited(part, opts.MaxBodyBytes)
		part.Close()
		if err != nil {
			releaseAll()
			return nil, &Error{Reason: "read field part", Err: err}
		}
		addField(fields, name, string(data))
	}

	return &Result{Fields: fields, Attachments: attachments}, nil
}

// envelope mirrors the webhook payload shape:
// { "payload": { "data": {...}, "files": [...], "number": n, "created_at": t } }
type envelope struct {
	Payload *struct {
		Data      map[string]any  `json:"data"`
		Files     []AttachmentRef `json:"files"`
		Number    json.Number     `json:"number"`
		CreatedAt string          `json:"created_at"`
	} `json:"payload"`
}

func decodeEnvelope(raw []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, &Error{Reason: "invalid JSON body", Err: err}
	}
	if env.Payload == nil || env.Payload.Data == nil {
		return nil, &Error{Reason: "webhook envelope missing payload.data"}
	}

	fields := make(map[string]models.RawField, len(env.Payload.Data))
	for key, value := range env.Payload.Data {
		switch v := value.(type) {
		case nil:
			continue
		case []any:
			var vals []string
			for _, item := range v {
				vals = append(vals, stringifyScalar(item))
			}
			if len(vals) == 0 {
				continue
			}
			f := models.RawField{Name: strings.TrimSuffix(key, "[]"), Values: vals, IsArray: true}
			fields[f.Name] = f
		default:
			addField(fields, key, stringifyScalar(v))
		}
	}

	if n := env.Payload.Number.String(); n != "" {
		addField(fields, "submission_number", n)
	}

	var refs []AttachmentRef
	for _, ref := range env.Payload.Files {
		if ref.URL == "" {
			continue
		}
		refs = append(refs, ref)
	}

	return &Result{Fields: fields, Refs: refs}, nil
}

func stringifyScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// readLimited reads r up to max bytes, returning errTooLarge when the source
// holds more.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, errTooLarge
	}
	return data, nil
}
