package llm

// CompletionRequest is the body a browser client POSTs to the relay.
type CompletionRequest struct {
	// System instruction, injected as a developer turn ahead of Input
	System string `json:"system"`

	// Conversation history, oldest first. The caller owns this history and
	// resends it on every request.
	Input []ConversationTurn `json:"input"`
}

// ResponsesRequest is the payload sent to the upstream Responses API.
type ResponsesRequest struct {
	Model           string             `json:"model"`
	Input           []ConversationTurn `json:"input"`
	MaxOutputTokens int                `json:"max_output_tokens"`
}

// BuildInput returns the upstream turn sequence: exactly one developer turn
// wrapping system, followed by input in its original order. input is not
// modified.
func BuildInput(system string, input []ConversationTurn) []ConversationTurn {
	turns := make([]ConversationTurn, 0, len(input)+1)
	turns = append(turns, NewTextTurn(RoleDeveloper, system))
	turns = append(turns, input...)
	return turns
}
