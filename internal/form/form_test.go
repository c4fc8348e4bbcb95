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

package form

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefault verifies the embedded form definition parses and carries the
// fields the pipeline depends on.
func TestDefault(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Honeypot != "bot-field" {
		t.Errorf("honeypot = %q, want bot-field", s.Honeypot)
	}

	if !s.IsDateField("date") || !s.IsDateField("debt_incurred_date") {
		t.Error("expected date and debt_incurred_date to be date fields")
	}
	if s.IsDateField("amount") {
		t.Error("amount should not be a date field")
	}

	if got := s.LabelFor("account_no"); got != "Account Number" {
		t.Errorf("LabelFor(account_no) = %q, want Account Number", got)
	}

	if len(s.Consolidate) == 0 {
		t.Fatal("expected consolidation rules in default spec")
	}
	if s.Consolidate[0].Key != "full_name" {
		t.Errorf("first consolidation key = %q, want full_name", s.Consolidate[0].Key)
	}
}

// TestLabelFor_Generated verifies unknown keys get a generated label.
func TestLabelFor_Generated(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"some_new_field", "Some New Field"},
		{"single", "Single"},
		{"trailing_", "Trailing"},
		{"multi__underscore", "Multi Underscore"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := s.LabelFor(tt.key); got != tt.want {
				t.Errorf("LabelFor(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

// TestLoad_Override verifies a spec file with env expansion takes precedence
// over the embedded default.
func TestLoad_Override(t *testing.T) {
	t.Setenv("TEST_HONEYPOT_FIELD", "trap")

	path := filepath.Join(t.TempDir(), "form.yaml")
	spec := `
honeypot: ${TEST_HONEYPOT_FIELD}
labels:
  - { key: amount, label: "Amount" }
`
	if err := os.WriteFile(path, []byte(spec), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Honeypot != "trap" {
		t.Errorf("honeypot = %q, want trap", s.Honeypot)
	}
	if s.HasLabel("claim_type") {
		t.Error("override spec should not carry default labels")
	}
}

// TestLoad_EmptyPathFallsBack verifies Load("") returns the default.
func TestLoad_EmptyPathFallsBack(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Honeypot != "bot-field" {
		t.Errorf("honeypot = %q, want bot-field", s.Honeypot)
	}
}

// TestParse_Invalid verifies malformed definitions are rejected.
func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"no labels", `honeypot: bot-field`},
		{"duplicate label key", "labels:\n  - { key: a, label: A }\n  - { key: a, label: B }"},
		{"empty label key", "labels:\n  - { key: \"\", label: A }"},
		{"rule without sources", "labels:\n  - { key: a, label: A }\nconsolidate:\n  - { key: x, sources: [] }"},
		{"not yaml", `{{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse([]byte(tt.spec)); err == nil {
				t.Error("expected error, got none")
			}
		})
	}
}
