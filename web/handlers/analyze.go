package handlers

import (
	"context"
	"net/http"

	"redpen/web/types"

	"github.com/gin-gonic/gin"
)

type Rephraser interface {
	Rephrase(ctx context.Context, sentence string) []string
	Analyze(ctx context.Context, sentence string) []string
}

type AnalyzeHandler struct {
	rephraser Rephraser
}

func NewAnalyzeHandler(rephraser Rephraser) *AnalyzeHandler {
	return &AnalyzeHandler{rephraser: rephraser}
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req types.SentenceRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, types.AnalyzeResponse{
		RephrasedSentences: h.rephraser.Analyze(c.Request.Context(), req.Sentence),
	})
}

// Rephrase handles POST /api/analyze/rephrase.
func (h *AnalyzeHandler) Rephrase(c *gin.Context) {
	var req types.SentenceRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, types.RephraseResponse{
		Original:     req.Sentence,
		Alternatives: h.rephraser.Rephrase(c.Request.Context(), req.Sentence),
	})
}
