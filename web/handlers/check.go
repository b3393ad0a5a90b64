package handlers

import (
	"context"
	"net/http"

	apperrors "redpen/errors"
	"redpen/web/middleware"
	"redpen/web/types"
	"redpen/writing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WritingChecker interface {
	Check(ctx context.Context, text string) (writing.Result, error)
}

type CheckHandler struct {
	checker WritingChecker
	logger  *zap.Logger
}

func NewCheckHandler(checker WritingChecker, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		checker: checker,
		logger:  logger,
	}
}

// Check handles POST /api/check.
func (h *CheckHandler) Check(c *gin.Context) {
	var req types.TextRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.checker.Check(c.Request.Context(), req.Text)
	if err != nil {
		logger := middleware.Logger(c, h.logger)
		if apperrors.IsNotConfigured(err) {
			logger.Error("Writing check requested without LLM_API_KEY")
			c.JSON(http.StatusInternalServerError, types.FailedCheckResponse(req.Text,
				"Writing check is not configured. Set LLM_API_KEY in the environment"))
			return
		}
		logger.Error("Writing check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.FailedCheckResponse(req.Text,
			"Writing check failed. Please try again."))
		return
	}

	c.JSON(http.StatusOK, types.NewCheckResponse(res))
}
