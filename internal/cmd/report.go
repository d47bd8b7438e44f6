package cmd

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List active accounts and insert a test deposit",
	Long: `Print every active account, then insert one test deposit and print
its transaction id.

The deposit is written to the transactions table only. Account balances are
not changed and every run inserts a new row.

The deposit is configured under report.* (account 1, 77.77 by default).`,
	Args: cobra.NoArgs,
	Run:  dbRun(nil, runReport),
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(ctx context.Context, s *session, args []string) error {
	amount, err := decimal.NewFromString(s.cfg.Report.Amount)
	if err != nil {
		return err
	}

	_, err = report.New(s.queries, s.ui, s.log).Run(ctx, report.Deposit{
		AccountID:   s.cfg.Report.AccountID,
		Amount:      amount,
		Description: s.cfg.Report.Description,
	})
	return err
}
