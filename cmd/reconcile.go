package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ynab-exchange/core/config"
	"ynab-exchange/core/logger"
	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/utils"
	"ynab-exchange/feature/exchange"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	budgetFlag string
	dryRunFlag bool
	jsonFlag   bool
	yesConfirm bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run reconciliation passes and manage their state",
	Long: `Mirror foreign-currency transactions into each budget's exchange account.
Passes run once and exit; use "start" to serve the HTTP trigger instead.`,
}

// runReconcileCmd runs one pass per budget.
var runReconcileCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one pass over every budget (or one with --budget)",
	Long: `Run one reconciliation pass.

Examples:
  # Every configured budget
  reconcile run

  # Plan only, print the planned actions as JSON
  reconcile run --budget 6f9c... --dry-run --json`,
	RunE: runReconcile,
}

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Inspect or reset the stored server knowledge of a budget",
}

var cursorShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored cursor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *exchange.Service, l *zap.Logger) error {
			cursor, err := svc.Cursor(cmd.Context(), budgetFlag)
			if err != nil {
				return err
			}
			return printJSON(cursor)
		})
	},
}

var cursorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored cursor so the next pass rescans the lookback window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *exchange.Service, l *zap.Logger) error {
			if !confirmDestructiveAction() {
				l.Warn("Operation cancelled by user. No changes were made.")
				return nil
			}
			return svc.ResetCursor(cmd.Context(), budgetFlag)
		})
	},
}

// schemaCmd checks the state tables against the models.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check that the state tables match the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *exchange.Service, l *zap.Logger) error {
			report, err := svc.Health()
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if report.Status != "ok" {
				return fmt.Errorf("state schema is %s", report.Status)
			}
			return nil
		})
	},
}

func init() {
	runReconcileCmd.Flags().StringVar(&budgetFlag, "budget", "", "Only reconcile this budget id")
	runReconcileCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Plan every action without mutating YNAB or the cursor")
	runReconcileCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full pass results as JSON")

	for _, c := range []*cobra.Command{cursorShowCmd, cursorResetCmd} {
		c.Flags().StringVar(&budgetFlag, "budget", "", "Budget id")
		_ = c.MarkFlagRequired("budget")
	}
	cursorResetCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm (non-interactive)")

	cursorCmd.AddCommand(cursorShowCmd, cursorResetCmd)
	reconcileCmd.AddCommand(runReconcileCmd, cursorCmd, schemaCmd)
	RootCmd.AddCommand(reconcileCmd)
}

// withService loads configuration, builds the service and runs fn.
func withService(ctx context.Context, fn func(*exchange.Service, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	svc, cleanup, err := exchange.Build(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(svc, l)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := reconcile.Options{DryRun: dryRunFlag}

	return withService(ctx, func(svc *exchange.Service, l *zap.Logger) error {
		var results []*reconcile.PassResult
		var runErr error

		if budgetFlag != "" {
			result, err := svc.RunBudget(ctx, budgetFlag, opts)
			if result != nil {
				results = append(results, result)
			}
			runErr = err
		} else {
			results, runErr = svc.RunAll(ctx, opts)
		}

		if jsonFlag {
			if err := printJSON(results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				printPassReport(l, r)
			}
		}

		if opts.DryRun {
			l.Info("Dry-run mode: No changes were made.")
		}
		return runErr
	})
}

// printPassReport logs a pass summary and a sample of its actions.
func printPassReport(l *zap.Logger, r *reconcile.PassResult) {
	s := r.Summary

	l.Info("Reconciliation report",
		zap.String("budget_id", r.BudgetID),
		zap.String("pass_id", r.PassID),
		zap.Int("accounts", s.Accounts),
		zap.Int("transactions", s.Transactions),
		zap.Int("new", s.New),
		zap.Int("updated", s.Updated),
		zap.Int("deleted", s.Deleted),
		zap.Int("skipped", s.Skipped),
		zap.Int("mirrors_created", s.MirrorsCreated),
		zap.Int("mirrors_deleted", s.MirrorsDeleted),
		zap.String("net_adjustment", utils.FormatMilliunits(s.NetAdjustment, r.BaseCurrency)),
	)

	const maxShow = 5
	shown := 0
	for _, acc := range r.Accounts {
		for _, tx := range acc.Transactions {
			for _, action := range tx.Actions {
				if shown == maxShow {
					l.Info("Additional actions not shown, use --json for the full plan")
					return
				}
				l.Info("Sample action",
					zap.String("account", acc.AccountName),
					zap.String("source_id", tx.SourceID),
					zap.String("type", string(action.Type)),
					zap.Bool("applied", action.Applied),
				)
				shown++
			}
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
