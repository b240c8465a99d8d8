package llm

import "context"

// Completer binds a Client to one model, exposing the system/user call shape
// the pipeline stages consume. Two completers over the same client give the
// cheap and strong tiers a shared rate limit and breaker.
type Completer struct {
	client *Client
	model  string
}

// NewCompleter creates a Completer for the given model.
func NewCompleter(client *Client, model string) *Completer {
	return &Completer{client: client, model: model}
}

// Complete runs one system+user completion.
func (c *Completer) Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	return c.client.Complete(ctx, Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}
