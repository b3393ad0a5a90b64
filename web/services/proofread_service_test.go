package services

import (
	"context"
	"errors"
	"testing"

	"redpen/metrics"
	"redpen/proofread"

	"go.uber.org/zap"
)

func ltMatch(offset, length int, repl, ruleID, issueType string) proofread.Match {
	return proofread.Match{
		Offset:       offset,
		Length:       length,
		Replacements: []proofread.Replacement{{Value: repl}},
		Rule:         &proofread.Rule{ID: ruleID, IssueType: issueType},
	}
}

func TestGrammarAppliesAllMatches(t *testing.T) {
	checker := &fakeChecker{matches: []proofread.Match{
		ltMatch(0, 3, "The", "UPPERCASE_SENTENCE_START", "typographical"),
		ltMatch(4, 3, "cat", "MORFOLOGIK_RULE_EN_US", "misspelling"),
	}}
	svc := NewProofreadService(checker, metrics.New(), zap.NewNop())

	got, err := svc.Grammar(context.Background(), "the cta sat")
	if err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	if got.CorrectedText != "The cat sat" || len(got.Errors) != 2 {
		t.Errorf("Grammar = %+v", got)
	}
}

func TestSpellingFiltersToSpellingMatches(t *testing.T) {
	checker := &fakeChecker{matches: []proofread.Match{
		ltMatch(0, 3, "The", "UPPERCASE_SENTENCE_START", "typographical"),
		ltMatch(4, 3, "cat", "MORFOLOGIK_RULE_EN_US", "misspelling"),
	}}
	svc := NewProofreadService(checker, metrics.New(), zap.NewNop())

	got, err := svc.Spelling(context.Background(), "the cta sat")
	if err != nil {
		t.Fatalf("Spelling: %v", err)
	}
	if got.CorrectedText != "the cat sat" {
		t.Errorf("CorrectedText = %q", got.CorrectedText)
	}
	if len(got.Errors) != 1 || got.Errors[0].Rule != "MORFOLOGIK_RULE_EN_US" {
		t.Errorf("Errors = %+v", got.Errors)
	}
}

func TestProofreadBlankAndFailure(t *testing.T) {
	checker := &fakeChecker{}
	svc := NewProofreadService(checker, metrics.New(), zap.NewNop())
	got, err := svc.Grammar(context.Background(), " ")
	if err != nil || got.CorrectedText != " " || got.Errors == nil || len(got.Errors) != 0 {
		t.Errorf("blank: got %+v, %v", got, err)
	}
	if checker.calls != 0 {
		t.Errorf("checker called for blank text")
	}

	boom := errors.New("boom")
	svc = NewProofreadService(&fakeChecker{err: boom}, metrics.New(), zap.NewNop())
	if _, err := svc.Spelling(context.Background(), "text"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
