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
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestFetch verifies a successful download carries bytes, filename and type
// through.
func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 1024)

	att, err := f.Fetch(context.Background(), AttachmentRef{
		URL:      server.URL + "/docs/invoice.pdf",
		Filename: "invoice.pdf",
		Type:     "application/pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if att.Filename != "invoice.pdf" {
		t.Errorf("filename = %q", att.Filename)
	}
	if att.MimeType != "application/pdf" {
		t.Errorf("mime type = %q", att.MimeType)
	}
	if !bytes.Equal(att.Data, []byte("%PDF-1.4 fake")) {
		t.Error("bytes do not round-trip")
	}
}

// TestFetch_FallbackNames verifies filename and type fall back to the URL path
// and response header.
func TestFetch_FallbackNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 1024)

	att, err := f.Fetch(context.Background(), AttachmentRef{URL: server.URL + "/uploads/photo.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if att.Filename != "photo.png" {
		t.Errorf("filename = %q, want photo.png", att.Filename)
	}
	if att.MimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", att.MimeType)
	}
}

// TestFetch_NonSuccessStatus verifies a non-2xx response is a FetchError.
func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 1024)

	_, err := f.Fetch(context.Background(), AttachmentRef{URL: server.URL + "/gone.pdf"})

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fe.Status)
	}
}

// TestFetch_Oversized verifies the per-file ceiling applies to remote
// attachments too.
func TestFetch_Oversized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 1024)

	_, err := f.Fetch(context.Background(), AttachmentRef{URL: server.URL + "/big.bin"})

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
}

// TestFetchAll_PartialFailure verifies one failed fetch drops only that
// attachment while its siblings survive in order.
func TestFetchAll_PartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.txt":
			w.Write([]byte("first"))
		case "/b.txt":
			w.WriteHeader(http.StatusInternalServerError)
		case "/c.txt":
			w.Write([]byte("third"))
		}
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 1024)

	got := f.FetchAll(context.Background(), []AttachmentRef{
		{URL: server.URL + "/a.txt", Filename: "a.txt"},
		{URL: server.URL + "/b.txt", Filename: "b.txt"},
		{URL: server.URL + "/c.txt", Filename: "c.txt"},
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(got))
	}
	if got[0].Filename != "a.txt" || got[1].Filename != "c.txt" {
		t.Errorf("order not preserved: %q, %q", got[0].Filename, got[1].Filename)
	}
}

// TestFetchAll_Empty verifies no refs means no work.
func TestFetchAll_Empty(t *testing.T) {
	f := NewFetcher(nil, 1024)
	if got := f.FetchAll(context.Background(), nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
