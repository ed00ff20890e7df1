package game

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// Role is the speaker of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is what a transport returns for one call.
type Reply struct {
	Text         string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Latency      time.Duration
	Cost         decimal.Decimal
}

// Transport sends the whole conversation and returns the model's next
// message. Any error is fatal to the run.
type Transport interface {
	Send(ctx context.Context, messages []Message) (Reply, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, messages []Message) (Reply, error)

// Send implements Transport
func (f TransportFunc) Send(ctx context.Context, messages []Message) (Reply, error) {
	return f(ctx, messages)
}

// Prompter renders the text of each prompt the engine sends.
type Prompter interface {
	System() string
	GauntletSystem(stage Stage) string
	Turn(v VisibleState) string
	StageTurn(v VisibleState) string
	Question(q questions.Question) string
	Boss(qs []questions.Question) string
}

// Usage accumulates token counts, cost and wall time over a run.
type Usage struct {
	Calls        int             `json:"calls"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
	TotalTokens  int             `json:"total_tokens"`
	Cost         decimal.Decimal `json:"cost"`
	Elapsed      time.Duration   `json:"elapsed_ns"`
}

// Add folds one reply into the totals
func (u *Usage) Add(r Reply) {
	u.Calls++
	u.InputTokens += r.InputTokens
	u.OutputTokens += r.OutputTokens
	total := r.TotalTokens
	if total == 0 {
		total = r.InputTokens + r.OutputTokens
	}
	u.TotalTokens += total
	u.Cost = u.Cost.Add(r.Cost)
	u.Elapsed += r.Latency
}
