package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercomputeco/relay/pkg/llm"
)

// FallbackErrorMessage is used when a failed upstream response carries no
// error object of its own.
const FallbackErrorMessage = "OpenAI API error"

// Response is an upstream reply reduced to the fields the relay uses.
type Response struct {
	StatusCode int

	// Raw is the complete response body.
	Raw json.RawMessage

	// Error is the upstream "error" value, verbatim. Nil when absent or falsy.
	Error json.RawMessage

	// Text is the completion text, empty when none could be found.
	Text string
}

// OK reports whether the upstream returned a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorObject returns the value to place under "error" when relaying a failed
// response: the upstream error verbatim, or a fallback carrying the raw body.
func (r *Response) ErrorObject() any {
	if r.Error != nil {
		return r.Error
	}
	return &llm.ErrorDetail{Message: FallbackErrorMessage, Raw: r.Raw}
}

type outputItem struct {
	Type    string `json:"type"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func parseResponse(status int, body []byte) (*Response, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream returned a non-JSON body (status %d)", status)
	}

	resp := &Response{StatusCode: status, Raw: json.RawMessage(body)}

	// A failed response is relayed whatever its shape. A successful one must be
	// an object to carry a completion.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		if resp.OK() {
			return nil, fmt.Errorf("upstream returned a non-object body (status %d)", status)
		}
		return resp, nil
	}

	if raw, ok := fields["error"]; ok && !falsy(raw) {
		resp.Error = raw
	}
	resp.Text = extractText(fields)

	return resp, nil
}

// extractText prefers the output_text convenience field and falls back to
// joining the output_text parts of message items.
func extractText(fields map[string]json.RawMessage) string {
	var text string
	if raw, ok := fields["output_text"]; ok && json.Unmarshal(raw, &text) == nil && text != "" {
		return text
	}

	raw, ok := fields["output"]
	if !ok {
		return ""
	}

	var items []outputItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}

	var b strings.Builder
	for _, item := range items {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

func falsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "null", "false", `""`, "0":
		return true
	}
	return false
}
