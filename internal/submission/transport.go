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

package submission

import (
	"fmt"
	"html"
	"strings"
)

// Request is the transport-neutral inbound event. Both the HTTP server and
// the Lambda entrypoint adapt their native request into this shape.
type Request struct {
	Method          string
	Headers         map[string]string
	Body            string
	IsBase64Encoded bool
}

// Header looks up a header case-insensitively; transports disagree on
// canonicalization.
func (r *Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response is the transport-neutral outbound result.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// respond builds either a browser-facing HTML page or a plain-text body,
// depending on what the caller accepts. Browser posts come straight from the
// form and expect a navigable result page.
func respond(req *Request, status int, title, detail string) *Response {
	if !strings.Contains(req.Header("Accept"), "text/html") {
		return &Response{
			StatusCode: status,
			Headers:    map[string]string{"Content-Type": "text/plain"},
			Body:       detail,
		}
	}

	body := fmt.Sprintf(`<html>
  <body style="font-family: Arial; padding: 40px; text-align: center;">
    <h1>%s</h1>
    <p>%s</p>
    <a href="/">Go back</a>
  </body>
</html>
`, html.EscapeString(title), html.EscapeString(detail))

	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/html"},
		Body:       body,
	}
}
