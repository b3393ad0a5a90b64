package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"redpen/config"
	apperrors "redpen/errors"
	"redpen/utils"

	"go.uber.org/zap"
)

type paraphraseParameters struct {
	NumBeams           int `json:"num_beams"`
	NumReturnSequences int `json:"num_return_sequences"`
}

type paraphraseRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters paraphraseParameters `json:"parameters"`
}

// generation mirrors the text2text-generation / summarization output items.
type generation struct {
	GeneratedText string `json:"generated_text"`
	SummaryText   string `json:"summary_text"`
}

// HuggingFace calls the hosted inference API for sequence-to-sequence models.
type HuggingFace struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    utils.Backoff
	maxRetries int
	logger     *zap.Logger
}

func NewHuggingFace(cfg *config.Config, logger *zap.Logger) *HuggingFace {
	return &HuggingFace{
		baseURL:    strings.TrimRight(cfg.HuggingFaceURL, "/"),
		apiKey:     cfg.HuggingFaceAPIKey,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		backoff: utils.Backoff{
			Base:        cfg.RetryDelaySeconds,
			Max:         cfg.LLMBackoffMaxSeconds,
			JitterRatio: cfg.LLMBackoffJitterRatio,
		},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Paraphrase asks model for up to n rewordings of text. Items without text
// are skipped; the result may be empty.
func (h *HuggingFace) Paraphrase(ctx context.Context, model, text string, n int) ([]string, error) {
	body, err := json.Marshal(paraphraseRequest{
		Inputs:     text,
		Parameters: paraphraseParameters{NumBeams: 5, NumReturnSequences: n},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal paraphrase request: %w", err)
	}

	raw, err := h.query(ctx, model, body)
	if err != nil {
		return nil, err
	}

	var gens []generation
	if err := json.Unmarshal(raw, &gens); err != nil {
		return nil, fmt.Errorf("%w: decode paraphrase response: %v", apperrors.ErrUpstream, err)
	}

	out := make([]string, 0, n)
	for _, g := range gens {
		s := g.GeneratedText
		if s == "" {
			s = g.SummaryText
		}
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// query posts body to the model endpoint, retrying while the model is loading
// (503) and on transport errors.
func (h *HuggingFace) query(ctx context.Context, model string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", h.baseURL, model)

	var lastErr error
	for attempt := 0; attempt < h.maxRetries; attempt++ {
		if attempt > 0 {
			if err := h.backoff.Sleep(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create inference request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.apiKey)
		}

		resp, err := h.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusServiceUnavailable {
			lastErr = fmt.Errorf("model %s loading", model)
			h.logger.Info("Inference model loading, retrying",
				zap.String("model", model),
				zap.Int("attempt", attempt+1))
			continue
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: inference status %s: %s", apperrors.ErrUpstream, resp.Status, string(raw))
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: inference request: %v", apperrors.ErrUpstream, lastErr)
}
