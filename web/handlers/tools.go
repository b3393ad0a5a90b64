package handlers

import (
	"context"
	"net/http"

	apperrors "redpen/errors"
	"redpen/web/middleware"
	"redpen/web/services"
	"redpen/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const notConfiguredMessage = "LLM_API_KEY not set"

type WritingTools interface {
	Paraphrase(ctx context.Context, text string) (string, []string, error)
	Improve(ctx context.Context, text string) (services.Improvement, error)
	Synonyms(ctx context.Context, word string) (string, []string, error)
	Rewrite(ctx context.Context, text string, mode services.RewriteMode) (string, string, error)
}

type ToolsHandler struct {
	tools  WritingTools
	logger *zap.Logger
}

func NewToolsHandler(tools WritingTools, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{
		tools:  tools,
		logger: logger,
	}
}

// toolError picks the status and message for a failed tool call.
func (h *ToolsHandler) toolError(c *gin.Context, tool string, err error) (int, string) {
	if apperrors.IsNotConfigured(err) {
		return http.StatusInternalServerError, notConfiguredMessage
	}
	middleware.Logger(c, h.logger).Error("Writing tool failed",
		zap.String("tool", tool),
		zap.Error(err))
	return http.StatusInternalServerError, tool + " failed. Please try again."
}

// Paraphrase handles POST /api/tools/paraphrase. Upstream failures are
// reported with status 200 and the input as the only option.
func (h *ToolsHandler) Paraphrase(c *gin.Context) {
	var req types.TextRequest
	if !bindJSON(c, &req) {
		return
	}

	original, options, err := h.tools.Paraphrase(c.Request.Context(), req.Text)
	if err != nil {
		if apperrors.IsNotConfigured(err) {
			msg := "Server is not configured for paraphrasing."
			c.JSON(http.StatusInternalServerError, types.ParaphraseResponse{Original: original, Options: options, Error: &msg})
			return
		}
		middleware.Logger(c, h.logger).Warn("Paraphrase failed", zap.Error(err))
		msg := "Paraphrasing failed. Try shorter text or again later."
		c.JSON(http.StatusOK, types.ParaphraseResponse{Original: original, Options: options, Error: &msg})
		return
	}

	c.JSON(http.StatusOK, types.ParaphraseResponse{Original: original, Options: options})
}

// Improve handles POST /api/tools/improve.
func (h *ToolsHandler) Improve(c *gin.Context) {
	var req types.TextRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.tools.Improve(c.Request.Context(), req.Text)
	resp := types.ImproveResponse{
		Original:     res.Original,
		Improved:     res.Improved,
		Alternatives: res.Alternatives,
	}
	if err != nil {
		status, msg := h.toolError(c, "Improve", err)
		resp.Error = msg
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Synonyms handles POST /api/tools/synonyms.
func (h *ToolsHandler) Synonyms(c *gin.Context) {
	var req types.SynonymsRequest
	if !bindJSON(c, &req) {
		return
	}

	word, synonyms, err := h.tools.Synonyms(c.Request.Context(), req.Word)
	resp := types.SynonymsResponse{Word: word, Synonyms: synonyms}
	if err != nil {
		status, msg := h.toolError(c, "Synonyms", err)
		resp.Error = msg
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rewrite handles POST /api/tools/rewrite.
func (h *ToolsHandler) Rewrite(c *gin.Context) {
	var req types.RewriteRequest
	if !bindJSON(c, &req) {
		return
	}

	text, result, err := h.tools.Rewrite(c.Request.Context(), req.Text, services.ParseRewriteMode(req.Mode))
	resp := types.RewriteResponse{Text: text, Result: result}
	if err != nil {
		status, msg := h.toolError(c, "Rewrite", err)
		resp.Error = msg
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
