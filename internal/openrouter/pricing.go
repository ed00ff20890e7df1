package openrouter

import (
	"github.com/shopspring/decimal"
)

// Price is USD per million tokens.
type Price struct {
	Input  decimal.Decimal
	Output decimal.Decimal
}

// Pricing maps model ids to prices.
type Pricing map[string]Price

var million = decimal.NewFromInt(1_000_000)

func price(in, out string) Price {
	return Price{Input: decimal.RequireFromString(in), Output: decimal.RequireFromString(out)}
}

// FallbackPrice is charged for models missing from the table.
var FallbackPrice = price("1", "2")

// DefaultPricing holds approximate list prices.
var DefaultPricing = Pricing{
	"anthropic/claude-3.5-sonnet":       price("3", "15"),
	"anthropic/claude-3-opus":           price("15", "75"),
	"anthropic/claude-3-haiku":          price("0.25", "1.25"),
	"openai/gpt-4o":                     price("2.5", "10"),
	"openai/gpt-4o-mini":                price("0.15", "0.6"),
	"openai/gpt-4-turbo":                price("10", "30"),
	"google/gemini-pro-1.5":             price("1.25", "5"),
	"google/gemini-2.0-flash-exp:free":  price("0", "0"),
	"meta-llama/llama-3.3-70b-instruct": price("0.4", "0.4"),
	"deepseek/deepseek-chat":            price("0.14", "0.28"),
	"mistralai/mistral-large":           price("2", "6"),
	"qwen/qwen-2.5-72b-instruct":        price("0.35", "0.4"),
}

// Lookup returns the price for model, or FallbackPrice.
func (p Pricing) Lookup(model string) Price {
	if pr, ok := p[model]; ok {
		return pr
	}
	return FallbackPrice
}

// Cost estimates the USD cost of one call.
func (p Pricing) Cost(model string, inputTokens, outputTokens int) decimal.Decimal {
	pr := p.Lookup(model)
	in := decimal.NewFromInt(int64(inputTokens)).Mul(pr.Input)
	out := decimal.NewFromInt(int64(outputTokens)).Mul(pr.Output)
	return in.Add(out).Div(million)
}
