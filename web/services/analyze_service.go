package services

import (
	"context"
	"strings"
	"time"

	"redpen/metrics"

	"go.uber.org/zap"
)

const maxRephrasings = 3

// Paraphraser generates rewordings with a hosted sequence-to-sequence model.
type Paraphraser interface {
	Paraphrase(ctx context.Context, model, text string, n int) ([]string, error)
}

// AnalyzeService produces sentence rephrasings. It never fails: upstream
// errors degrade to echoing the sentence back.
type AnalyzeService struct {
	hf      Paraphraser
	model   string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAnalyzeService(hf Paraphraser, model string, m *metrics.Metrics, logger *zap.Logger) *AnalyzeService {
	return &AnalyzeService{
		hf:      hf,
		model:   model,
		metrics: m,
		logger:  logger,
	}
}

// Rephrase returns up to three alternatives for sentence, or the sentence
// itself when none could be generated.
func (s *AnalyzeService) Rephrase(ctx context.Context, sentence string) []string {
	if strings.TrimSpace(sentence) == "" {
		return []string{sentence}
	}
	return s.generate(ctx, sentence)
}

// Analyze is Rephrase with an empty result for blank input.
func (s *AnalyzeService) Analyze(ctx context.Context, sentence string) []string {
	if strings.TrimSpace(sentence) == "" {
		return []string{}
	}
	return s.generate(ctx, sentence)
}

func (s *AnalyzeService) generate(ctx context.Context, sentence string) []string {
	start := time.Now()
	out, err := s.hf.Paraphrase(ctx, s.model, sentence, maxRephrasings)
	s.metrics.ObserveUpstream("huggingface", time.Since(start).Seconds(), err)
	if err != nil {
		s.logger.Warn("Rephrase failed, using original sentence", zap.Error(err))
		return []string{sentence}
	}
	if len(out) == 0 {
		return []string{sentence}
	}
	if len(out) > maxRephrasings {
		out = out[:maxRephrasings]
	}
	return out
}
