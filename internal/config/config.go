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

// Package config loads configuration from environment variables.
//
// Required values (the SendGrid credential and verified sender) are validated
// up front so a misconfigured deployment fails before any form data is parsed.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default size ceilings. All are overridable via environment; treat them as
// configuration, not invariants.
const (
	DefaultMaxBodyBytes            = 10 << 20 // 10 MiB raw request body
	DefaultMaxFileBytes            = 5 << 20  // 5 MiB per attachment
	DefaultMaxTotalAttachmentBytes = 20 << 20 // 20 MiB across all attachments
	DefaultMaxFieldLength          = 10000    // runes per normalized field value
	DefaultDisplayLimit            = 200      // runes shown per rendered value
)

// Config holds all configuration for the instruction form service.
type Config struct {
	// SendGrid
	APIKey      string
	SenderEmail string
	SenderName  string

	// Recipient fallback when the form specifies none.
	DefaultRecipient string

	// Subject line prefix; the signature field is appended.
	SubjectPrefix string

	// Optional form definition override (labels, aliases, honeypot).
	FormSpecPath string

	// Ceilings
	MaxBodyBytes            int64
	MaxFileBytes            int64
	MaxTotalAttachmentBytes int64
	MaxFieldLength          int
	DisplayLimit            int

	// ParseTimeout bounds decoding plus remote attachment fetches for one
	// submission.
	ParseTimeout time.Duration

	// Server (HTTP mode only)
	Port int
}

// Load reads configuration from environment variables and validates the
// required values.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:           os.Getenv("SENDGRID_API_KEY"),
		SenderEmail:      os.Getenv("SENDGRID_SENDER_EMAIL"),
		SenderName:       os.Getenv("SENDGRID_SENDER_NAME"),
		DefaultRecipient: os.Getenv("DEFAULT_RECIPIENT"),
		SubjectPrefix:    envOrDefault("SUBJECT_PREFIX", "Instruction Sheet"),
		FormSpecPath:     os.Getenv("FORM_SPEC_PATH"),

		MaxBodyBytes:            envOrDefaultInt64("MAX_BODY_BYTES", DefaultMaxBodyBytes),
		MaxFileBytes:            envOrDefaultInt64("MAX_FILE_BYTES", DefaultMaxFileBytes),
		MaxTotalAttachmentBytes: envOrDefaultInt64("MAX_TOTAL_ATTACHMENT_BYTES", DefaultMaxTotalAttachmentBytes),
		MaxFieldLength:          envOrDefaultInt("MAX_FIELD_LENGTH", DefaultMaxFieldLength),
		DisplayLimit:            envOrDefaultInt("DISPLAY_LIMIT", DefaultDisplayLimit),

		ParseTimeout: envOrDefaultDuration("PARSE_TIMEOUT", 20*time.Second),
		Port:         envOrDefaultInt("PORT", 8080),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is required")
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SENDGRID_SENDER_EMAIL is required — must be a verified sender")
	}

	if cfg.MaxBodyBytes <= 0 || cfg.MaxFileBytes <= 0 || cfg.MaxTotalAttachmentBytes <= 0 {
		return nil, fmt.Errorf("size ceilings must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
