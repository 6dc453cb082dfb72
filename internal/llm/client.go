// Package llm is a minimal chat-completions client for the AI provider
// backing risk suggestions. It knows nothing about risks; it sends a prompt
// and returns the raw completion text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/minrisk/risk-management/internal"
)

// CompletionClient is the surface the suggestion service depends on.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	ModelVersion() string
}

type Client struct {
	http    *resty.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(cfg internal.AIConfig, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{
		http:    httpClient,
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *Client) ModelVersion() string {
	return c.model
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-turn chat completion. The call is bounded by the
// configured request timeout; a deadline hit surfaces as an upstream timeout
// so the handler can report it distinctly from provider errors.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result chatResponse
	started := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": 0.2,
		}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			c.logger.Warn("ai completion timed out", "elapsed", time.Since(started))
			return "", internal.NewUpstreamTimeoutError("ai provider did not respond in time", err)
		}
		return "", internal.NewUpstreamError("ai provider request failed", err)
	}

	if resp.IsError() {
		c.logger.Warn("ai completion failed", "status", resp.StatusCode())
		return "", internal.NewUpstreamError(
			fmt.Sprintf("ai provider returned status %d", resp.StatusCode()), nil)
	}

	if len(result.Choices) == 0 {
		return "", internal.NewUpstreamError("ai provider returned no choices", nil)
	}

	c.logger.Info("ai completion finished", "model", c.model, "elapsed", time.Since(started))
	return result.Choices[0].Message.Content, nil
}
