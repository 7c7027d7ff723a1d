package llm

// CompletionResponse is returned to the caller on a successful completion.
// AssistantMessage should be appended to the caller's history for the next
// round-trip.
type CompletionResponse struct {
	Text             string           `json:"text"`
	AssistantMessage ConversationTurn `json:"assistant_message"`
}

// NewCompletionResponse wraps text in an assistant turn.
func NewCompletionResponse(text string) CompletionResponse {
	return CompletionResponse{
		Text:             text,
		AssistantMessage: NewTextTurn(RoleAssistant, text),
	}
}

// PingResponse reports whether the relay has an upstream credential configured.
type PingResponse struct {
	OK bool `json:"ok"`
}
