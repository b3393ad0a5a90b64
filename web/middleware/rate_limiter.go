package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"redpen/metrics"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	RequestsPerMinute int           // Sustained requests per client per minute
	BurstSize         int           // Allow burst of N requests
	IdleTTL           time.Duration // Forget a client after this long without requests
	CleanupInterval   time.Duration // How often expired clients are purged
}

// ClientRateLimiter keeps one token bucket per client key. Idle buckets
// expire from the cache, so memory is bounded by active clients.
type ClientRateLimiter struct {
	config  RateLimiterConfig
	buckets *cache.Cache
	logger  *zap.Logger
}

func NewClientRateLimiter(config RateLimiterConfig, logger *zap.Logger) *ClientRateLimiter {
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = config.IdleTTL
	}
	return &ClientRateLimiter{
		config:  config,
		buckets: cache.New(config.IdleTTL, config.CleanupInterval),
		logger:  logger,
	}
}

func (l *ClientRateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(float64(l.config.RequestsPerMinute)/60.0), l.config.BurstSize)
	// Add fails if another request created the bucket first; use that one.
	if err := l.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow consumes a token for key and reports the tokens left.
func (l *ClientRateLimiter) Allow(key string) (bool, int) {
	lim := l.limiter(key)
	allowed := lim.Allow()
	remaining := int(math.Max(0, math.Floor(lim.Tokens())))
	return allowed, remaining
}

// Clients returns the number of tracked clients.
func (l *ClientRateLimiter) Clients() int {
	return l.buckets.ItemCount()
}

// RateLimitMiddleware limits requests per client IP. A non-positive
// RequestsPerMinute disables limiting.
func RateLimitMiddleware(limiter *ClientRateLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.config.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		allowed, remaining := limiter.Allow(c.ClientIP())
		limit := limiter.config.BurstSize

		// Add rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retryAfter := int(math.Ceil(60.0 / float64(limiter.config.RequestsPerMinute)))
			Logger(c, limiter.logger).Warn("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.Int("limit", limit))
			if m != nil {
				m.RateLimited.Inc()
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"limit":       limit,
				"remaining":   0,
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
