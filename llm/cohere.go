package llm

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereClient implements Client against Cohere's chat-completions
// API. It generalizes the teacher's embeddings client's HTTP/1.1
// workaround (Cohere's HTTP/2 handling has been observed to drop
// long-lived connections mid-stream) from embeddings to chat.
type CohereClient struct {
	client *cohereclient.Client
	model  string
}

// NewCohereClient builds a client with a forced-HTTP/1.1 transport.
func NewCohereClient(apiKey, model string) *CohereClient {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	c := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereClient{client: c, model: model}
}

// Chat issues a single chat-completions call under the request's
// implied deadline, which the caller sets via ctx.
func (c *CohereClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var system *string
	var user string
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			s := m.Content
			system = &s
		case "user":
			user = m.Content
		}
	}

	temp := req.Temperature
	maxTokens := req.MaxTokens

	systemContent := ""
	if system != nil {
		systemContent = *system
	}
	resp, err := c.client.V2.Chat(ctx, &cohere.V2ChatRequest{
		Model: model,
		Messages: cohere.ChatMessages{
			{
				Role: "system",
				System: &cohere.SystemMessageV2{
					Content: &cohere.SystemMessageV2Content{String: systemContent},
				},
			},
			{
				Role: "user",
				User: &cohere.UserMessageV2{
					Content: &cohere.UserMessageV2Content{String: user},
				},
			},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil || resp.Message == nil {
		return nil, fmt.Errorf("cohere chat: empty response")
	}

	var text string
	for _, c := range resp.Message.Content {
		if c.Text != nil {
			text += c.Text.Text
		}
	}

	inputTokens, outputTokens := 0, 0
	if resp.Usage != nil && resp.Usage.Tokens != nil {
		if resp.Usage.Tokens.InputTokens != nil {
			inputTokens = int(*resp.Usage.Tokens.InputTokens)
		}
		if resp.Usage.Tokens.OutputTokens != nil {
			outputTokens = int(*resp.Usage.Tokens.OutputTokens)
		}
	}

	return &ChatResponse{Content: text, InputTokens: inputTokens, OutputTokens: outputTokens}, nil
}
