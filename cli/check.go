package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"redpen/config"
	"redpen/llmclient"
	"redpen/proofread"
	"redpen/web/services"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Run the model-backed writing check on a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer config.Cleanup()

			svc := services.NewCheckService(llmclient.New(cfg, logger), nil, logger)
			res, err := svc.Check(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("writing check: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newProofreadCommand(opts *rootOptions) *cobra.Command {
	var spelling bool
	cmd := &cobra.Command{
		Use:   "proofread [file]",
		Short: "Apply grammar (or spelling) corrections to a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer config.Cleanup()

			svc := services.NewProofreadService(proofread.NewClient(cfg, logger), nil, logger)
			run := svc.Grammar
			if spelling {
				run = svc.Spelling
			}
			res, err := run(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("proofread: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&spelling, "spelling", false, "apply spelling corrections only")
	return cmd
}

// readInput returns the named file's contents, or stdin when no file (or
// "-") is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
