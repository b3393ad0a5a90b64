package handlers

import (
	"context"
	"net/http"

	"redpen/proofread"
	"redpen/web/middleware"
	"redpen/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Proofreader interface {
	Grammar(ctx context.Context, text string) (proofread.Correction, error)
	Spelling(ctx context.Context, text string) (proofread.Correction, error)
}

type ProofreadHandler struct {
	proofreader Proofreader
	logger      *zap.Logger
}

func NewProofreadHandler(proofreader Proofreader, logger *zap.Logger) *ProofreadHandler {
	return &ProofreadHandler{
		proofreader: proofreader,
		logger:      logger,
	}
}

// Grammar handles POST /api/grammarcheck.
func (h *ProofreadHandler) Grammar(c *gin.Context) {
	h.handle(c, h.proofreader.Grammar, "Error checking grammar")
}

// Spelling handles POST /api/spellcheck.
func (h *ProofreadHandler) Spelling(c *gin.Context) {
	h.handle(c, h.proofreader.Spelling, "Error checking spelling")
}

func (h *ProofreadHandler) handle(c *gin.Context, run func(context.Context, string) (proofread.Correction, error), failure string) {
	var req types.TextRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := run(c.Request.Context(), req.Text)
	if err != nil {
		middleware.Logger(c, h.logger).Error("Proofreading failed",
			zap.String("route", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ProofreadResponse{
			Error:         failure,
			CorrectedText: req.Text,
			Errors:        []proofread.Edit{},
		})
		return
	}

	c.JSON(http.StatusOK, types.ProofreadResponse{
		CorrectedText: res.CorrectedText,
		Errors:        res.Errors,
	})
}
