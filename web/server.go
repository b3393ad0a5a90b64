package web

import (
	"context"
	"net/http"
	"time"

	"redpen/config"
	"redpen/metrics"
	"redpen/web/handlers"
	"redpen/web/middleware"
	"redpen/web/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// Services bundles what the HTTP layer serves.
type Services struct {
	Check     *services.CheckService
	Proofread *services.ProofreadService
	Tools     *services.ToolsService
	Analyze   *services.AnalyzeService
	Auth      *services.AuthService
}

type Server struct {
	router   *gin.Engine
	services Services
	limiter  *middleware.ClientRateLimiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	config   *config.Config
}

func NewServer(svc Services, m *metrics.Metrics, logger *zap.Logger, config *config.Config) *Server {
	// Set Gin mode based on environment
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// ClientIP keys the rate limiter, so forwarded headers are only honored
	// from configured proxies.
	if err := router.SetTrustedProxies(config.TrustedProxies); err != nil {
		logger.Warn("Invalid trusted proxy list, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.CORS(config.CORSAllowedOrigins))
	router.Use(middleware.Metrics(m))

	server := &Server{
		router:   router,
		services: svc,
		limiter: middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerMinute: config.RateLimitRequestsPerMin,
			BurstSize:         config.RateLimitBurstSize,
		}, logger),
		metrics: m,
		logger:  logger,
		config:  config,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/health", handlers.Health)

	checkHandler := handlers.NewCheckHandler(s.services.Check, s.logger)
	proofreadHandler := handlers.NewProofreadHandler(s.services.Proofread, s.logger)
	toolsHandler := handlers.NewToolsHandler(s.services.Tools, s.logger)
	analyzeHandler := handlers.NewAnalyzeHandler(s.services.Analyze)
	authHandler := handlers.NewAuthHandler(s.services.Auth, s.logger)

	api := s.router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(s.limiter, s.metrics))
	api.Use(middleware.OptionalAuth(s.services.Auth))

	api.POST("/check", checkHandler.Check)
	api.POST("/grammarcheck", proofreadHandler.Grammar)
	api.POST("/spellcheck", proofreadHandler.Spelling)

	tools := api.Group("/tools")
	tools.POST("/paraphrase", toolsHandler.Paraphrase)
	tools.POST("/improve", toolsHandler.Improve)
	tools.POST("/synonyms", toolsHandler.Synonyms)
	tools.POST("/rewrite", toolsHandler.Rewrite)

	api.POST("/analyze", analyzeHandler.Analyze)
	api.POST("/analyze/rephrase", analyzeHandler.Rephrase)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/google", authHandler.Google)
	auth.GET("/me", middleware.RequireAuth(s.services.Auth), authHandler.Me)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
			errCh <- err
		}
	}()

	// Wait for context cancellation
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
