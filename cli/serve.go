package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"redpen/config"
	"redpen/database"
	"redpen/llmclient"
	"redpen/metrics"
	"redpen/proofread"
	"redpen/web"
	"redpen/web/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer config.Cleanup()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := database.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	// --- Ensure Schema Exists ---
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure database schema: %w", err)
	}

	if !cfg.LLMConfigured() {
		logger.Warn("LLM_API_KEY is not set; writing check and tools will report errors")
	}
	if cfg.JWTSecret == "your-secret-change-in-production" {
		logger.Warn("JWT_SECRET is the built-in default; set it before exposing the server")
	}

	m := metrics.New()
	llm := llmclient.New(cfg, logger)
	tools, err := services.NewToolsService(llm, cfg.SynonymCacheSize, m, logger)
	if err != nil {
		return err
	}
	google := services.NewTokenInfoVerifier(cfg.GoogleClientID, cfg.GoogleTokenInfoURL, logger)

	webServer := web.NewServer(web.Services{
		Check:     services.NewCheckService(llm, m, logger),
		Proofread: services.NewProofreadService(proofread.NewClient(cfg, logger), m, logger),
		Tools:     tools,
		Analyze:   services.NewAnalyzeService(llmclient.NewHuggingFace(cfg, logger), cfg.ParaphraseModel, m, logger),
		Auth:      services.NewAuthService(store, google, cfg.JWTSecret, cfg.TokenExpiry, logger),
	}, m, logger, cfg)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting RedPen web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
