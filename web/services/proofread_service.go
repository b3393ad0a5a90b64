package services

import (
	"context"
	"strings"
	"time"

	"redpen/metrics"
	"redpen/proofread"

	"go.uber.org/zap"
)

// ProofreadService applies rule-based proofreading matches to text.
type ProofreadService struct {
	checker proofread.Checker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewProofreadService(checker proofread.Checker, m *metrics.Metrics, logger *zap.Logger) *ProofreadService {
	return &ProofreadService{
		checker: checker,
		metrics: m,
		logger:  logger,
	}
}

// Grammar applies every match.
func (s *ProofreadService) Grammar(ctx context.Context, text string) (proofread.Correction, error) {
	return s.run(ctx, text, proofread.GrammarDefaults, nil)
}

// Spelling applies only spelling matches, or all matches when none of them
// are classified as spelling.
func (s *ProofreadService) Spelling(ctx context.Context, text string) (proofread.Correction, error) {
	return s.run(ctx, text, proofread.SpellingDefaults, proofread.SpellingMatches)
}

func (s *ProofreadService) run(ctx context.Context, text string, defaults proofread.Defaults, filter func([]proofread.Match) []proofread.Match) (proofread.Correction, error) {
	if strings.TrimSpace(text) == "" {
		return proofread.Unchanged(text), nil
	}

	start := time.Now()
	matches, err := s.checker.Check(ctx, text)
	s.metrics.ObserveUpstream("languagetool", time.Since(start).Seconds(), err)
	if err != nil {
		return proofread.Correction{}, err
	}

	if filter != nil {
		matches = filter(matches)
	}
	result := proofread.Apply(text, matches, defaults)
	s.logger.Debug("Proofread complete",
		zap.Int("matches", len(matches)),
		zap.Int("applied", len(result.Errors)))
	return result, nil
}
