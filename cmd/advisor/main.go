package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/app"
)

type rootOptions struct {
	configPath string
	userID     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Personal finance advisor: budgets, risk, stocks and advice",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// A missing .env is normal outside development
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to advisor.toml (default: $ADVISOR_CONFIG, then advisor.toml next to the binary, then config/advisor.toml)")
	root.PersistentFlags().StringVarP(&opts.userID, "user", "u", "", "User ID to evaluate")

	root.AddCommand(
		newSnapshotCmd(opts),
		newMarketCmd(opts),
		newHealthCmd(opts),
		newRiskCmd(opts),
		newStocksCmd(opts),
		newScreenCmd(opts),
		newAdviceCmd(opts),
		newOptimizeCmd(opts),
		newPipelineCmd(opts),
		newImportCmd(opts),
		newScheduleCmd(opts),
		newVersionCmd(),
	)
	return root
}

// openApp wires the App for a single command. The caller closes it.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	a, err := app.NewApp(cmd.Context(), opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

// requireUser is used as PreRunE by the per-user commands
func requireUser(opts *rootOptions) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		if opts.userID == "" {
			return fmt.Errorf("--user is required")
		}
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
