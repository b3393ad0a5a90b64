package middleware

import (
	"net/http"
	"strings"

	"redpen/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "user"

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}

// OptionalAuth stores the token's claims when a valid bearer token is sent
// and otherwise lets the request through anonymously.
func OptionalAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			if claims, err := parser.ParseToken(token); err == nil {
				c.Set(claimsKey, claims)
				if l, ok := c.Get("logger"); ok {
					if zl, ok := l.(*zap.Logger); ok {
						c.Set("logger", zl.With(zap.String("user_id", claims.UserID)))
					}
				}
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		claims, err := parser.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the claims set by OptionalAuth or RequireAuth.
func CurrentUser(c *gin.Context) (*services.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.Claims)
	return claims, ok
}
