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

package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sync"

	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// FetchError reports a failed download of a referenced attachment. A single
// failed attachment is dropped from the submission, never fatal to it.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch attachment %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch attachment %s: HTTP %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads attachment bytes referenced by webhook envelopes.
type Fetcher struct {
	client       *http.Client
	maxFileBytes int64
}

// NewFetcher creates an attachment fetcher. A nil client uses
// http.DefaultClient.
func NewFetcher(client *http.Client, maxFileBytes int64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:       client,
		maxFileBytes: maxFileBytes,
	}
}

// Fetch downloads one referenced attachment, enforcing the per-file byte
// ceiling.
func (f *Fetcher) Fetch(ctx context.Context, ref AttachmentRef) (*models.RawAttachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: ref.URL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: ref.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: ref.URL, Status: resp.StatusCode}
	}

	data, err := readLimited(resp.Body, f.maxFileBytes)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, &FetchError{URL: ref.URL, Err: fmt.Errorf("exceeds %d bytes", f.maxFileBytes)}
		}
		return nil, &FetchError{URL: ref.URL, Err: err}
	}

	filename := ref.Filename
	if filename == "" {
		filename = filenameFromURL(ref.URL)
	}

	mimeType := ref.Type
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}

	return models.NewRawAttachment("", filename, mimeType, data, nil), nil
}

// FetchAll downloads every referenced attachment concurrently. Fetches are
// independent: a failure drops that single attachment (logged) without
// cancelling its siblings, and all fetches are awaited before returning.
// Order of the returned blobs matches the order of refs.
func (f *Fetcher) FetchAll(ctx context.Context, refs []AttachmentRef) []*models.RawAttachment {
	if len(refs) == 0 {
		return nil
	}

	results := make([]*models.RawAttachment, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref AttachmentRef) {
			defer wg.Done()
			att, err := f.Fetch(ctx, ref)
			if err != nil {
				slog.Warn("attachment fetch failed, dropping",
					"url", ref.URL,
					"filename", ref.Filename,
					"error", err,
				)
				return
			}
			results[i] = att
		}(i, ref)
	}
	wg.Wait()

	fetched := make([]*models.RawAttachment, 0, len(refs))
	for _, att := range results {
		if att != nil {
			fetched = append(fetched, att)
		}
	}
	return fetched
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "attachment"
	}
	return path.Base(u.Path)
}
