// Package llm provides the representations of chat turns exchanged between the
// browser client, the relay and the upstream Responses API.
package llm

import "encoding/json"

// ErrorResponse is the flat error body used for method errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorDetail is the structured error object carried by APIError.
type ErrorDetail struct {
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// APIError wraps an error object. Error is either an *ErrorDetail built by the
// relay or the upstream error object passed through verbatim.
type APIError struct {
	Error any `json:"error"`
}

// NewAPIError creates an APIError with the given message.
func NewAPIError(message string) APIError {
	return APIError{Error: &ErrorDetail{Message: message}}
}
