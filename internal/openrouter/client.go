// Package openrouter is a minimal client for the OpenRouter chat completions
// API, the only model provider the benchmark talks to.
//
// The client sends the full conversation on every call, retries rate limits
// and server errors with capped exponential backoff, and reports token usage
// together with an estimated cost.
//
// # Usage
//
//	client := openrouter.NewClient(openrouter.Config{APIKey: key})
//	completion, err := client.Complete(ctx, "openai/gpt-4o", messages)
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// Defaults applied by NewClient.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultReferer     = "https://github.com/cognitive-gauntlet"
	DefaultTitle       = "Cognitive Gauntlet Benchmark"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Config holds configuration for the OpenRouter client.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is sent as a bearer token. Required.
	APIKey string

	// Referer and Title identify the app to OpenRouter.
	Referer string
	Title   string

	Temperature float64
	MaxTokens   int

	// MaxRetries is the maximum number of retry attempts for retryable errors.
	// Defaults to 3 if zero; negative disables retries.
	MaxRetries int

	// BaseRetryDelay is the initial backoff. Defaults to 2 seconds if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the backoff. Defaults to 10 seconds if zero.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with a 120s timeout.
	HTTPClient *http.Client

	// Pricing overrides the cost table. Defaults to DefaultPricing.
	Pricing Pricing
}

// Client is an OpenRouter API client. It is safe for concurrent use.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client with defaults filled in.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 2 * time.Second
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 10 * time.Second
	}
	if cfg.Pricing == nil {
		cfg.Pricing = DefaultPricing
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{config: cfg, http: httpClient}
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *APIError `json:"error"`
}

// Completion is one model reply with its accounting.
type Completion struct {
	ID           string
	Content      string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Latency      time.Duration
	Cost         decimal.Decimal
}

// Complete sends messages to model and returns the first choice. Latency
// covers every attempt, including backoff.
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (Completion, error) {
	if c.config.APIKey == "" {
		return Completion{}, ErrMissingAPIKey
	}
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("openrouter: marshal request: %w", err)
	}

	start := time.Now()
	var resp *chatResponse
	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		r, err := c.doRequest(ctx, body)
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) && httpErr.IsRetryable() {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return Completion{}, err
	}

	out := Completion{ID: resp.ID, Latency: time.Since(start)}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	if u := resp.Usage; u != nil {
		out.InputTokens = u.PromptTokens
		out.OutputTokens = u.CompletionTokens
		out.TotalTokens = u.TotalTokens
	}
	if out.TotalTokens == 0 {
		out.TotalTokens = out.InputTokens + out.OutputTokens
	}
	out.Cost = c.config.Pricing.Cost(model, out.InputTokens, out.OutputTokens)
	return out, nil
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.config.BaseRetryDelay)
	b = retry.WithCappedDuration(c.config.MaxRetryDelay, b)
	retries := c.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), b)
}

// doRequest sends a single POST to /chat/completions and decodes the response.
func (c *Client) doRequest(ctx context.Context, body []byte) (*chatResponse, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("HTTP-Referer", c.config.Referer)
	req.Header.Set("X-Title", c.config.Title)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openrouter: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	case resp.StatusCode != http.StatusOK:
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: errorMessage(respBody)}
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("openrouter: invalid response JSON: %w", err)
	}
	// OpenRouter reports some upstream failures inside a 200
	if out.Error != nil {
		if out.Error.Code == http.StatusTooManyRequests || out.Error.Code >= 500 {
			return nil, &HTTPError{StatusCode: out.Error.Code, Body: out.Error.Message}
		}
		return nil, out.Error
	}
	return &out, nil
}

// errorMessage pulls error.message out of an error body, falling back to the
// raw text.
func errorMessage(body []byte) string {
	var env struct {
		Error *APIError `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(body))
}
