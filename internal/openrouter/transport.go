package openrouter

import (
	"context"
	"fmt"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/game"
)

// Transport binds a client to one model so the engine can drive it.
type Transport struct {
	client *Client
	model  string
}

var _ game.Transport = (*Transport)(nil)

// NewTransport returns a game transport for model.
func NewTransport(c *Client, model string) *Transport {
	return &Transport{client: c, model: model}
}

// Model returns the model id
func (t *Transport) Model() string { return t.model }

// Send implements game.Transport
func (t *Transport) Send(ctx context.Context, messages []game.Message) (game.Reply, error) {
	msgs := make([]Message, len(messages))
	for i, m := range messages {
		msgs[i] = Message{Role: string(m.Role), Content: m.Content}
	}
	c, err := t.client.Complete(ctx, t.model, msgs)
	if err != nil {
		return game.Reply{}, fmt.Errorf("OpenRouter API error for %s: %w", t.model, err)
	}
	return game.Reply{
		Text:         c.Content,
		InputTokens:  c.InputTokens,
		OutputTokens: c.OutputTokens,
		TotalTokens:  c.TotalTokens,
		Latency:      c.Latency,
		Cost:         c.Cost,
	}, nil
}

// DisplayNames overrides how model ids are shown in tables.
var DisplayNames = map[string]string{}

// DisplayName returns the override for id, or the last path segment.
func DisplayName(id string) string {
	if name, ok := DisplayNames[id]; ok && name != "" {
		return name
	}
	if i := strings.LastIndex(id, "/"); i >= 0 && i < len(id)-1 {
		return id[i+1:]
	}
	return id
}
