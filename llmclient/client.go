package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"redpen/config"
	apperrors "redpen/errors"
	"redpen/utils"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatRequest is a single-turn completion: one system prompt, one user message.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSONMode asks the provider for a JSON object response. Output is still
	// treated as untrusted by callers.
	JSONMode bool
}

// Completer is the subset of Client the writing services depend on.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Client calls an OpenAI-compatible chat completions API (Groq by default).
type Client struct {
	api        *openai.Client
	model      string
	configured bool
	backoff    utils.Backoff
	maxRetries int
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.LLMBaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.LLMRequestTimeout}

	return &Client{
		api:        openai.NewClientWithConfig(clientConfig),
		model:      cfg.LLMModel,
		configured: cfg.LLMConfigured(),
		backoff: utils.Backoff{
			Base:        cfg.RetryDelaySeconds,
			Max:         cfg.LLMBackoffMaxSeconds,
			JitterRatio: cfg.LLMBackoffJitterRatio,
		},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.configured
}

// Complete performs a non-streaming chat completion and returns the first
// choice's content. Model-loading (503) and rate-limit (429) responses and
// transport errors are retried with backoff.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if !c.configured {
		return "", apperrors.WrapError(apperrors.ErrNotConfigured, "llm api key")
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff.Sleep(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		resp, err := c.api.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("%w: no response choices from llm server", apperrors.ErrUpstream)
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		// Do not retry on context cancellation/deadline
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		c.logger.Warn("LLM service unavailable, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return "", fmt.Errorf("%w: chat completion: %v", apperrors.ErrUpstream, lastErr)
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusServiceUnavailable ||
			apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusServiceUnavailable ||
			reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= 500
	}
	// Transport-level failure (connection refused, reset, timeout).
	return true
}
