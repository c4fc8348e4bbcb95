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

// Package render projects a canonical record into the human-readable
// notification: an HTML table plus a plain-text fallback.
//
// Rows follow the label table's declared order, not the record's map order,
// so the notification reads the same no matter which branch of the form was
// used. Record keys missing from the label table are appended afterwards with
// generated labels.
package render

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/GMettam/galvins-instruction-form/internal/form"
	"github.com/GMettam/galvins-instruction-form/internal/models"
)

// perth is the firm's local zone for the submission timestamp line.
var perth = time.FixedZone("AWST", 8*60*60)

// Renderer turns canonical records into notifications.
type Renderer struct {
	spec         *form.Spec
	displayLimit int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a renderer. displayLimit caps each rendered value in runes
// (excess shown with an ellipsis); zero or negative disables the cap.
func New(spec *form.Spec, displayLimit int) *Renderer {
	return &Renderer{
		spec:         spec,
		displayLimit: displayLimit,
		now:          time.Now,
	}
}

type row struct {
	label string
	value string
}

// Render builds the HTML and text bodies for one submission. attachmentCount
// only affects the informational note; the attachments themselves travel
// separately.
func (r *Renderer) Render(record models.CanonicalRecord, attachmentCount int) *models.RenderedNotification {
	rows := r.orderedRows(record)

	return &models.RenderedNotification{
		HTML: r.renderHTML(rows, attachmentCount),
		Text: r.renderText(rows, attachmentCount),
	}
}

// orderedRows walks the label table in declared order, then appends labelled
// leftovers alphabetically for determinism.
func (r *Renderer) orderedRows(record models.CanonicalRecord) []row {
	var rows []row
	for _, l := range r.spec.Labels {
		if value := record.Get(l.Key); value != "" {
			rows = append(rows, row{label: l.Label, value: r.truncate(value)})
		}
	}

	var leftovers []string
	for key := range record {
		if !r.spec.HasLabel(key) {
			leftovers = append(leftovers, key)
		}
	}
	sort.Strings(leftovers)
	for _, key := range leftovers {
		rows = append(rows, row{label: form.GenerateLabel(key), value: r.truncate(record.Get(key))})
	}

	return rows
}

func (r *Renderer) truncate(value string) string {
	if r.displayLimit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= r.displayLimit {
		return value
	}
	return string(runes[:r.displayLimit]) + "..."
}

func (r *Renderer) renderHTML(rows []row, attachmentCount int) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: Arial, sans-serif; margin: 20px; line-height: 1.4; }
      table { border-collapse: collapse; width: 100%; margin-top: 20px; }
      .header { background-color: #667eea; color: white; padding: 15px; margin-bottom: 20px; border-radius: 8px; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1>GALVINS - Instruction Sheet Submission</h1>
`)
	fmt.Fprintf(&b, "      <p>Submitted: %s</p>\n", r.now().In(perth).Format("02/01/2006 3:04:05 pm"))
	b.WriteString(`    </div>
    <table>
      <thead>
        <tr>
          <th style="border: 1px solid #ccc; padding: 10px; background-color: #e9ecef; text-align: left;">Field</th>
          <th style="border: 1px solid #ccc; padding: 10px; background-color: #e9ecef; text-align: left;">Value</th>
        </tr>
      </thead>
      <tbody>
`)

	if len(rows) == 0 && attachmentCount == 0 {
		b.WriteString(htmlRow("Submission", "No information entered"))
	}
	for _, row := range rows {
		b.WriteString(htmlRow(row.label, row.value))
	}

	b.WriteString(`      </tbody>
    </table>
`)

	if attachmentCount > 0 {
		fmt.Fprintf(&b, "    <p style=\"margin-top: 20px;\"><strong>Attachments:</strong> %d file(s) attached</p>\n", attachmentCount)
	}

	b.WriteString(`    <p style="margin-top: 30px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 15px;">
      This form submission was processed automatically by the Galvins instruction form system.
    </p>
  </body>
</html>
`)

	return b.String()
}

// htmlRow escapes both cells so form input can never inject markup, then
// turns embedded newlines into line breaks.
func htmlRow(label, value string) string {
	escaped := strings.ReplaceAll(html.EscapeString(value), "\n", "<br>")
	return fmt.Sprintf(`        <tr>
          <td style="border: 1px solid #ccc; padding: 8px; font-weight: bold; background-color: #f9f9f9; width: 250px; vertical-align: top;">%s</td>
          <td style="border: 1px solid #ccc; padding: 8px; word-wrap: break-word;">%s</td>
        </tr>
`, html.EscapeString(label), escaped)
}

func (r *Renderer) renderText(rows []row, attachmentCount int) string {
	var b strings.Builder

	b.WriteString("GALVINS INSTRUCTION SHEET\n\n")
	fmt.Fprintf(&b, "Submitted: %s\n\n", r.now().In(perth).Format("02/01/2006 3:04:05 pm"))

	if len(rows) == 0 && attachmentCount == 0 {
		b.WriteString("No information entered\n")
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s: %s\n", row.label, row.value)
	}

	if attachmentCount > 0 {
		fmt.Fprintf(&b, "\nAttachments: %d file(s) attached\n", attachmentCount)
	}

	return b.String()
}
