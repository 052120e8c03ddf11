package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/app"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// userCommand builds a command that evaluates one user and prints the result as JSON
func userCommand(opts *rootOptions, use, short string, run func(cmd *cobra.Command, a *app.App) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    cobra.NoArgs,
		PreRunE: requireUser(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := run(cmd, a)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var insights bool
	cmd := userCommand(opts, "snapshot", "Show the user's financial snapshot",
		func(cmd *cobra.Command, a *app.App) (any, error) {
			if insights {
				return a.GetSpendingInsights(cmd.Context(), opts.userID), nil
			}
			return a.GetFinancialSnapshot(cmd.Context(), opts.userID), nil
		})
	cmd.Flags().BoolVar(&insights, "insights", false, "Show spending insights instead of the full snapshot")
	return cmd
}

func newMarketCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show the current market context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return writeJSON(cmd.OutOrStdout(), a.GetMarketContext(cmd.Context()))
		},
	}
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return userCommand(opts, "health", "Compute the financial health score",
		func(cmd *cobra.Command, a *app.App) (any, error) {
			return a.ComputeHealthScore(cmd.Context(), opts.userID), nil
		})
}

func newRiskCmd(opts *rootOptions) *cobra.Command {
	return userCommand(opts, "risk", "Compute the risk score",
		func(cmd *cobra.Command, a *app.App) (any, error) {
			return a.ComputeRiskScore(cmd.Context(), opts.userID), nil
		})
}

func newStocksCmd(opts *rootOptions) *cobra.Command {
	var (
		tolerance string
		amount    float64
	)
	cmd := &cobra.Command{
		Use:   "stocks",
		Short: "Rank stock recommendations for a risk tolerance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var investment *float64
			if cmd.Flags().Changed("amount") {
				if amount < 0 {
					return fmt.Errorf("--amount must not be negative")
				}
				investment = &amount
			}
			return writeJSON(cmd.OutOrStdout(), a.GetStockRecommendations(cmd.Context(), tolerance, investment))
		},
	}
	cmd.Flags().StringVar(&tolerance, "risk-tolerance", "moderate", "conservative, moderate or aggressive")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount to split across BUY recommendations")
	return cmd
}

func newScreenCmd(opts *rootOptions) *cobra.Command {
	var criteria models.ScreenCriteria
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen the stock universe by sector, market cap and P/E",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return writeJSON(cmd.OutOrStdout(), a.ScreenStocks(cmd.Context(), criteria))
		},
	}
	cmd.Flags().StringSliceVar(&criteria.Sectors, "sector", nil, "Sectors to keep (repeatable)")
	cmd.Flags().Float64Var(&criteria.MinMarketCap, "min-market-cap", 0, "Minimum market capitalisation")
	cmd.Flags().Float64Var(&criteria.MaxPE, "max-pe", 0, "Maximum P/E ratio (0 uses the default)")
	return cmd
}

func newAdviceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "advice <question>",
		Short:   "Answer a financial question for the user",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: requireUser(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			question := strings.Join(args, " ")
			return writeJSON(cmd.OutOrStdout(), a.GetAdvice(cmd.Context(), opts.userID, question))
		},
	}
}

func newOptimizeCmd(opts *rootOptions) *cobra.Command {
	return userCommand(opts, "optimize", "Suggest spending optimizations",
		func(cmd *cobra.Command, a *app.App) (any, error) {
			return a.OptimizeSpending(cmd.Context(), opts.userID), nil
		})
}

func newPipelineCmd(opts *rootOptions) *cobra.Command {
	cmd := userCommand(opts, "pipeline", "Run the planner, risk, motivation and notification stages",
		func(cmd *cobra.Command, a *app.App) (any, error) {
			return a.RunAgentPipeline(cmd.Context(), opts.userID)
		})

	cmd.AddCommand(&cobra.Command{
		Use:   "executions <run-id>",
		Short: "List the recorded stage executions of a pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			execs, err := a.ListExecutions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), execs)
		},
	})
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:     "import <inputs.json>",
		Short:   "Import accounts, transactions, budgets and goals for the user",
		Args:    cobra.ExactArgs(1),
		PreRunE: requireUser(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.ImportInputsFromFile(cmd.Context(), opts.userID, args[0], replace)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete the user's existing records before importing")
	return cmd
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline for the configured users on the scheduler cron",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if once {
				ok, failed := a.SweepPipeline(ctx)
				return writeJSON(cmd.OutOrStdout(), map[string]int{"succeeded": ok, "failed": failed})
			}

			common.PrintBanner(os.Stdout, a.Config, a.Logger)
			if err := a.StartScheduler(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			common.PrintShutdownBanner(os.Stdout, a.Logger)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single sweep and exit")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			common.LoadVersionFromFile()
			return writeJSON(cmd.OutOrStdout(), common.CurrentVersion())
		},
	}
}
