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

// Package normalize reconciles decoded form fields into a canonical record.
//
// The instruction form renders different field sets depending on a prior
// choice (sole proprietor, company, partnership), so the same logical field
// arrives under several names. The consolidation rules in the form definition
// resolve those aliases in one declarative place rather than scattering branch
// logic through rendering.
//
// Normalization never fails on malformed field data — a bad date or an odd
// value degrades to the best available string. The only short-circuit is the
// spam honeypot.
package normalize

import (
	"errors"
	"strings"
	"time"

	"github.com/GMettam/galvins-instruction-form/internal/form"
	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// ErrSpamRejected marks a submission whose honeypot field was filled in.
// Real users never see the honeypot input; a value there means an automated
// sender.
var ErrSpamRejected = errors.New("honeypot field set, submission rejected as spam")

// Normalizer applies the form definition to decoded fields.
type Normalizer struct {
	spec           *form.Spec
	maxFieldLength int
}

// New creates a normalizer. maxFieldLength caps each flattened value in
// runes; zero or negative disables the cap.
func New(spec *form.Spec, maxFieldLength int) *Normalizer {
	return &Normalizer{
		spec:           spec,
		maxFieldLength: maxFieldLength,
	}
}

// Normalize builds the canonical record for one submission. Returns
// ErrSpamRejected when the honeypot field carries a non-empty value; the
// caller must stop processing and send nothing.
func (n *Normalizer) Normalize(fields map[string]models.RawField) (models.CanonicalRecord, error) {
	if n.spec.Honeypot != "" {
		if hp, ok := fields[n.spec.Honeypot]; ok {
			for _, v := range hp.Values {
				if strings.TrimSpace(v) != "" {
					return nil, ErrSpamRejected
				}
			}
		}
	}

	record := make(models.CanonicalRecord, len(fields))
	for name, f := range fields {
		if name == n.spec.Honeypot {
			continue
		}

		value := n.flatten(f)
		if n.spec.IsDateField(name) {
			value = reformatDate(value)
		}
		record[name] = value
	}

	// Consolidation overlay: first non-empty source wins, left to right.
	// Empty string and absence are the same thing here.
	for _, rule := range n.spec.Consolidate {
		for _, src := range rule.Sources {
			if v := record[src]; v != "" {
				record[rule.Key] = v
				break
			}
		}
	}

	for key, value := range record {
		if strings.TrimSpace(value) == "" {
			delete(record, key)
		}
	}

	return record, nil
}

// flatten joins array values with ", ", trims whitespace, and applies the
// configured length cap (truncating, not rejecting).
func (n *Normalizer) flatten(f models.RawField) string {
	if len(f.Values) == 0 {
		return ""
	}

	var value string
	if f.IsArray {
		trimmed := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			if t := strings.TrimSpace(v); t != "" {
				trimmed = append(trimmed, t)
			}
		}
		value = strings.Join(trimmed, ", ")
	} else {
		value = strings.TrimSpace(f.Values[0])
	}

	if n.maxFieldLength > 0 {
		if runes := []rune(value); len(runes) > n.maxFieldLength {
			value = string(runes[:n.maxFieldLength])
		}
	}
	return value
}

// reformatDate converts YYYY-MM-DD to DD/MM/YYYY for display. Anything that
// does not parse passes through unchanged — form input may not match
// expectations, and a raw date beats a dropped one.
func reformatDate(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}
