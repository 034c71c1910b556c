package cmd

import (
	"fmt"
	"os"

	"ynab-exchange/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ynab-exchange",
	Short: "YNAB Foreign Currency Mirror",
	Long: `ynab-exchange keeps a YNAB budget's exchange account in step with
its foreign-currency accounts by posting the difference each transaction
makes once converted to the budget's currency.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps reads better on a terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
