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

package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.test-key")
	t.Setenv("SENDGRID_SENDER_EMAIL", "forms@example.com")
}

// TestLoad_Defaults verifies ceilings and timeouts fall back to defaults.
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxFileBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileBytes = %d, want %d", cfg.MaxFileBytes, DefaultMaxFileBytes)
	}
	if cfg.SubjectPrefix != "Instruction Sheet" {
		t.Errorf("SubjectPrefix = %q, want Instruction Sheet", cfg.SubjectPrefix)
	}
	if cfg.ParseTimeout != 20*time.Second {
		t.Errorf("ParseTimeout = %v, want 20s", cfg.ParseTimeout)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

// TestLoad_MissingAPIKey verifies the fail-fast behaviour for a missing
// credential.
func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("SENDGRID_SENDER_EMAIL", "forms@example.com")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing SENDGRID_API_KEY")
	}
}

// TestLoad_MissingSender verifies the sender address is required.
func TestLoad_MissingSender(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.test-key")
	t.Setenv("SENDGRID_SENDER_EMAIL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing SENDGRID_SENDER_EMAIL")
	}
}

// TestLoad_Overrides verifies environment overrides are picked up.
func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_FILE_BYTES", "1024")
	t.Setenv("PARSE_TIMEOUT", "5s")
	t.Setenv("DEFAULT_RECIPIENT", "ops@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxFileBytes != 1024 {
		t.Errorf("MaxFileBytes = %d, want 1024", cfg.MaxFileBytes)
	}
	if cfg.ParseTimeout != 5*time.Second {
		t.Errorf("ParseTimeout = %v, want 5s", cfg.ParseTimeout)
	}
	if cfg.DefaultRecipient != "ops@example.com" {
		t.Errorf("DefaultRecipient = %q", cfg.DefaultRecipient)
	}
}

// TestLoad_InvalidCeiling verifies non-positive ceilings are rejected.
func TestLoad_InvalidCeiling(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_BODY_BYTES", "-1")

	if _, err := Load(); err == nil {
		t.Error("expected error for negative MAX_BODY_BYTES")
	}
}
