package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "redpen/errors"
	"redpen/llmclient"
	"redpen/metrics"
	"redpen/prompts"
	"redpen/utils"
	"redpen/writing"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const (
	// MaxParaphraseLength is the number of characters sent for paraphrasing.
	MaxParaphraseLength = 2500

	maxParaphraseOptions = 3
	maxAlternatives      = 2
	maxSynonyms          = 10
)

// RewriteMode selects the direction of a rewrite.
type RewriteMode string

const (
	RewriteSimplify RewriteMode = "simplify"
	RewriteExpand   RewriteMode = "expand"
)

// ParseRewriteMode defaults to simplify; any other explicit mode expands.
func ParseRewriteMode(mode string) RewriteMode {
	m := strings.ToLower(strings.TrimSpace(mode))
	if m == "" || m == string(RewriteSimplify) {
		return RewriteSimplify
	}
	return RewriteExpand
}

// Improvement is the result of an improve request.
type Improvement struct {
	Original     string
	Improved     string
	Alternatives []string
}

// ToolsService implements the smaller LLM-backed writing tools.
type ToolsService struct {
	llm      llmclient.Completer
	synonyms *lru.Cache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewToolsService(llm llmclient.Completer, cacheSize int, m *metrics.Metrics, logger *zap.Logger) (*ToolsService, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create synonym cache: %w", err)
	}
	return &ToolsService{
		llm:      llm,
		synonyms: cache,
		metrics:  m,
		logger:   logger,
	}, nil
}

// Paraphrase returns the trimmed input and up to three paraphrases of it.
// On upstream failure the options fall back to the input and the error is
// returned alongside them.
func (s *ToolsService) Paraphrase(ctx context.Context, text string) (string, []string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", []string{}, nil
	}
	if !s.llm.Configured() {
		return text, []string{}, apperrors.WrapError(apperrors.ErrNotConfigured, "paraphrase")
	}

	prompt := text
	if truncated, cut := utils.TruncateRunes(text, MaxParaphraseLength); cut {
		prompt = truncated + "..."
	}

	raw, err := s.complete(ctx, llmclient.ChatRequest{
		System:      prompts.Paraphrase(),
		User:        prompts.ParaphraseUser(prompt),
		Temperature: 0.6,
		MaxTokens:   2048,
		JSONMode:    true,
	})
	if err != nil {
		return text, []string{text}, err
	}

	obj := s.decode(raw, "paraphrase")
	options := stringList(obj["options"], maxParaphraseOptions)
	if len(options) == 0 {
		options = []string{text}
	}
	return text, options, nil
}

// Improve returns one improved version of text and up to two alternatives.
func (s *ToolsService) Improve(ctx context.Context, text string) (Improvement, error) {
	if strings.TrimSpace(text) == "" {
		return Improvement{Alternatives: []string{}}, nil
	}
	fallback := Improvement{Original: text, Improved: text, Alternatives: []string{}}
	if !s.llm.Configured() {
		return fallback, apperrors.WrapError(apperrors.ErrNotConfigured, "improve")
	}

	raw, err := s.complete(ctx, llmclient.ChatRequest{
		System:      prompts.Improve(),
		User:        prompts.ImproveUser(text),
		Temperature: 0.3,
		MaxTokens:   1024,
		JSONMode:    true,
	})
	if err != nil {
		return fallback, err
	}

	obj := s.decode(raw, "improve")
	improved := text
	if v, ok := obj["improved"].(string); ok && strings.TrimSpace(v) != "" {
		improved = strings.TrimSpace(v)
	}
	return Improvement{
		Original:     text,
		Improved:     improved,
		Alternatives: stringList(obj["alternatives"], maxAlternatives),
	}, nil
}

// Synonyms returns the trimmed word and up to ten alternatives. Results are
// cached per lower-cased word.
func (s *ToolsService) Synonyms(ctx context.Context, word string) (string, []string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", []string{}, nil
	}
	if !s.llm.Configured() {
		return word, []string{}, apperrors.WrapError(apperrors.ErrNotConfigured, "synonyms")
	}

	key := strings.ToLower(word)
	if cached, ok := s.synonyms.Get(key); ok {
		s.metrics.Cache("synonyms", true)
		return word, slices.Clone(cached.([]string)), nil
	}
	s.metrics.Cache("synonyms", false)

	raw, err := s.complete(ctx, llmclient.ChatRequest{
		System:      prompts.Synonyms(),
		User:        prompts.SynonymsUser(word),
		Temperature: 0.4,
		MaxTokens:   256,
		JSONMode:    true,
	})
	if err != nil {
		return word, []string{}, err
	}

	synonyms := stringList(s.decode(raw, "synonyms")["synonyms"], maxSynonyms)
	if len(synonyms) > 0 {
		s.synonyms.Add(key, slices.Clone(synonyms))
	}
	return word, synonyms, nil
}

// Rewrite simplifies or expands text. The trimmed input is returned first.
func (s *ToolsService) Rewrite(ctx context.Context, text string, mode RewriteMode) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", nil
	}
	if !s.llm.Configured() {
		return text, text, apperrors.WrapError(apperrors.ErrNotConfigured, "rewrite")
	}

	system := prompts.RewriteSimplify()
	if mode == RewriteExpand {
		system = prompts.RewriteExpand()
	}
	raw, err := s.complete(ctx, llmclient.ChatRequest{
		System:      system,
		User:        text,
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return text, text, err
	}

	result := strings.TrimSpace(raw)
	if result == "" {
		result = text
	}
	return text, result, nil
}

func (s *ToolsService) complete(ctx context.Context, req llmclient.ChatRequest) (string, error) {
	start := time.Now()
	raw, err := s.llm.Complete(ctx, req)
	s.metrics.ObserveUpstream("llm", time.Since(start).Seconds(), err)
	return raw, err
}

// decode returns the model's JSON object, or an empty map when there is none.
func (s *ToolsService) decode(raw, route string) map[string]any {
	obj, ok := writing.DecodeLenient(raw)
	if !ok {
		s.metrics.Fallback(route)
		s.logger.Warn("Model response had no JSON object", zap.String("route", route))
		return map[string]any{}
	}
	return obj
}

// stringList keeps the non-blank strings of v, trimmed, up to limit.
func stringList(v any, limit int) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
