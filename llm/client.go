// Package llm turns a stored article into a neutral, gated Brief
// through an iterative draft/bias-scan/expand/gate pipeline.
package llm

import "context"

// ChatMessage is one turn of the chat-completions-style protocol
// spec.md §6 requires: role in {"system", "user"}.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest carries every parameter the protocol names explicitly,
// rather than leaving temperature/max-tokens as client-side defaults.
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
	Model       string
}

// ChatResponse is the trimmed reply the rewriter needs: assistant text
// plus enough accounting to compute tokens and cost.
type ChatResponse struct {
	Content         string
	InputTokens     int
	OutputTokens    int
}

// Client abstracts the concrete LLM provider so the rewriter pipeline
// never depends on a specific vendor SDK directly.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
