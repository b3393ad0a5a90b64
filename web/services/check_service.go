package services

import (
	"context"
	"strings"
	"time"

	apperrors "redpen/errors"
	"redpen/llmclient"
	"redpen/metrics"
	"redpen/prompts"
	"redpen/writing"

	"go.uber.org/zap"
)

const (
	checkTemperature = 0.2
	checkMaxTokens   = 8192
)

// CheckService runs the unified writing check against the chat model and
// normalizes whatever comes back.
type CheckService struct {
	llm     llmclient.Completer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCheckService(llm llmclient.Completer, m *metrics.Metrics, logger *zap.Logger) *CheckService {
	return &CheckService{
		llm:     llm,
		metrics: m,
		logger:  logger,
	}
}

// Check returns the normalized result for text. Blank text short-circuits
// without calling the model. Errors are returned only when the model could
// not be reached; malformed model output degrades to writing.Fallback.
func (s *CheckService) Check(ctx context.Context, text string) (writing.Result, error) {
	if strings.TrimSpace(text) == "" {
		return writing.Empty(text), nil
	}
	if !s.llm.Configured() {
		return writing.Result{}, apperrors.WrapError(apperrors.ErrNotConfigured, "writing check")
	}

	start := time.Now()
	raw, err := s.llm.Complete(ctx, llmclient.ChatRequest{
		System:      prompts.UnifiedCheck(),
		User:        prompts.UnifiedCheckUser(text),
		Temperature: checkTemperature,
		MaxTokens:   checkMaxTokens,
		JSONMode:    true,
	})
	s.metrics.ObserveUpstream("llm", time.Since(start).Seconds(), err)
	if err != nil {
		return writing.Result{}, err
	}

	obj, ok := writing.DecodeLenient(raw)
	if !ok {
		s.metrics.Fallback("check")
		s.logger.Warn("Model response had no JSON object, using fallback",
			zap.Int("response_length", len(raw)))
	}
	return writing.NormalizeObject(obj, text), nil
}
