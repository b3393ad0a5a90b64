package proofread

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"redpen/config"
	apperrors "redpen/errors"
	"redpen/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Checker returns raw proofreading matches for a text.
type Checker interface {
	Check(ctx context.Context, text string) ([]Match, error)
}

type checkResponse struct {
	Matches []Match `json:"matches"`
}

// Client talks to a LanguageTool-compatible /v2/check endpoint.
type Client struct {
	endpoint   string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	backoff    utils.Backoff
	maxRetries int
	logger     *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.LanguageToolPerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.LanguageToolPerMin))
	}
	return &Client{
		endpoint:   cfg.LanguageToolURL,
		language:   cfg.LanguageToolLanguage,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		limiter:    rate.NewLimiter(limit, 1),
		backoff: utils.Backoff{
			Base:        cfg.RetryDelaySeconds,
			Max:         cfg.LLMBackoffMaxSeconds,
			JitterRatio: cfg.LLMBackoffJitterRatio,
		},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Check posts text to the checker and returns its matches. 429 and 503
// responses are retried with backoff; other non-2xx statuses fail at once.
func (c *Client) Check(ctx context.Context, text string) ([]Match, error) {
	form := url.Values{
		"text":     {text},
		"language": {c.language},
	}
	body := form.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff.Sleep(ctx, attempt-1); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("languagetool rate limit wait: %w", err)
		}

		matches, retry, err := c.do(ctx, body)
		if err == nil {
			return matches, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		c.logger.Warn("LanguageTool unavailable, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, apperrors.WrapError(fmt.Errorf("%w: %v", apperrors.ErrUpstream, lastErr), "languagetool check")
}

func (c *Client) do(ctx context.Context, body string) ([]Match, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send check request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read check response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusServiceUnavailable:
		return nil, true, fmt.Errorf("languagetool status %s", resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, fmt.Errorf("languagetool status %s: %s", resp.Status, string(raw))
	}

	var cr checkResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, false, fmt.Errorf("decode check response: %w", err)
	}
	if cr.Matches == nil {
		cr.Matches = []Match{}
	}
	return cr.Matches, false, nil
}
