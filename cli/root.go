// Package cli wires the redpen commands: the HTTP server plus one-shot
// checks that run against files or stdin.
package cli

import (
	"fmt"

	"redpen/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	cfgFile  string
	logLevel string
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "redpen",
		Short: "RedPen - writing assistant API",
		Long: `RedPen checks and improves English text.

It serves a JSON API for model-backed writing checks, rule-based grammar
and spelling correction, paraphrasing, synonyms and user accounts.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	serve := newServeCommand(opts)
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(
		serve,
		newCheckCommand(opts),
		newProofreadCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redpen %s\n", Version)
		},
	}
}

// bootstrap loads configuration and builds the logger. A temporary logger
// reports config problems before the configured level is known.
func (o *rootOptions) bootstrap() (*config.Config, *zap.Logger, error) {
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	if o.cfgFile != "" {
		viper.SetConfigFile(o.cfgFile)
	}
	cfg := config.Load(tempLogger)
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("re-initialize logger with configured level: %w", err)
	}
	return cfg, logger, nil
}
