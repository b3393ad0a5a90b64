package handlers

import (
	"errors"
	"io"
	"net/http"

	apperrors "redpen/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	// Log technical error with context
	if logger != nil {
		fields = append(fields, zap.Error(technicalError))
		logger.Error("Request failed", fields...)
	}

	// Return user-friendly message
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// statusFor maps an apperrors category to an HTTP status.
func statusFor(err error) int {
	switch {
	case apperrors.IsInvalidInput(err), apperrors.IsNotConfigured(err):
		return http.StatusBadRequest
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apperrors.IsConflict(err):
		return http.StatusConflict
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsServiceUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the request body into dst. A missing body leaves dst at
// its zero value. It reports false after writing a 400 response.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
