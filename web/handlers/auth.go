package handlers

import (
	"context"
	"errors"
	"net/http"

	"redpen/web/middleware"
	"redpen/web/services"
	"redpen/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Authenticator interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
	GoogleLogin(ctx context.Context, idToken string) (*types.AuthResponse, error)
	Me(ctx context.Context, userID string) (*types.User, error)
}

type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// fail writes err. Client-facing auth errors carry their own message;
// anything else is logged and reported with fallback.
func (h *AuthHandler) fail(c *gin.Context, err error, fallback string) {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		respondWithClientError(c, statusFor(authErr), authErr.Message)
		return
	}
	respondWithError(c, http.StatusInternalServerError, err, fallback, middleware.Logger(c, h.logger),
		zap.String("route", c.FullPath()))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Google handles POST /api/auth/google.
func (h *AuthHandler) Google(c *gin.Context) {
	var req types.GoogleLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		h.fail(c, err, "Google sign-in failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/auth/me. It runs behind middleware.RequireAuth.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		respondWithClientError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	user, err := h.auth.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, err, "Could not load user")
		return
	}
	c.JSON(http.StatusOK, types.MeResponse{User: user})
}
