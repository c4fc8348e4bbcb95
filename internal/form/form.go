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

// Package form holds the declarative form definition: the ordered field label
// table, the alias consolidation rules, the date field set, and the honeypot
// field name. The definition is configuration, not code — a built-in default
// is embedded, and FORM_SPEC_PATH can point at an override file.
package form

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed form.yaml
var defaultSpec []byte

// Label maps a canonical field key to its display label.
type Label struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Rule resolves one canonical key from an ordered list of branch-specific
// source keys. The first source with a non-empty value wins.
type Rule struct {
	Key     string   `yaml:"key"`
	Sources []string `yaml:"sources"`
}

// Spec is the full form definition.
type Spec struct {
	Honeypot    string   `yaml:"honeypot"`
	DateFields  []string `yaml:"date_fields"`
	Consolidate []Rule   `yaml:"consolidate"`
	Labels      []Label  `yaml:"labels"`

	dateSet  map[string]bool
	labelMap map[string]string
}

// Default returns the embedded form definition.
func Default() (*Spec, error) {
	return parse(defaultSpec)
}

// Load reads a form definition from path, expanding ${VAR} references the way
// config files do. An empty path falls back to the embedded default.
func Load(path string) (*Spec, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form spec %s: %w", path, err)
	}

	return parse([]byte(os.ExpandEnv(string(data))))
}

func parse(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse form spec YAML: %w", err)
	}

	if len(s.Labels) == 0 {
		return nil, fmt.Errorf("form spec has no labels")
	}

	seen := make(map[string]bool, len(s.Labels))
	for _, l := range s.Labels {
		if l.Key == "" {
			return nil, fmt.Errorf("form spec label with empty key")
		}
		if seen[l.Key] {
			return nil, fmt.Errorf("duplicate label key %q in form spec", l.Key)
		}
		seen[l.Key] = true
	}

	for _, r := range s.Consolidate {
		if r.Key == "" || len(r.Sources) == 0 {
			return nil, fmt.Errorf("consolidation rule missing key or sources")
		}
	}

	s.dateSet = make(map[string]bool, len(s.DateFields))
	for _, f := range s.DateFields {
		s.dateSet[f] = true
	}

	s.labelMap = make(map[string]string, len(s.Labels))
	for _, l := range s.Labels {
		s.labelMap[l.Key] = l.Label
	}

	return &s, nil
}

// IsDateField reports whether key is one of the configured date fields.
func (s *Spec) IsDateField(key string) bool {
	return s.dateSet[key]
}

// HasLabel reports whether key appears in the label table.
func (s *Spec) HasLabel(key string) bool {
	_, ok := s.labelMap[key]
	return ok
}

// LabelFor returns the display label for key, generating one from the key
// itself (underscores to spaces, title-cased) when it is not in the table.
func (s *Spec) LabelFor(key string) string {
	if l, ok := s.labelMap[key]; ok {
		return l
	}
	return GenerateLabel(key)
}

// GenerateLabel builds a display label from a raw field key:
// "debt_incurred_date" becomes "Debt Incurred Date".
func GenerateLabel(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
