package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/reconcile"
)

var reconcileCSV string

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the transactions table with an external CSV statement",
	Long: `Pair every database transaction with a row of an external statement.

The statement is a CSV file with the header
transaction_id,amount,type,reference. Rows with fewer than four fields or
an unparsable amount are skipped with a warning.

Each database row is matched first on type and amount, then on type alone
(reported as an amount mismatch). Every statement row is used at most once.

Example:
  fundctl transactions export --dir ./output
  fundctl reconcile --csv ./output/transactions.csv`,
	Args: cobra.NoArgs,
	Run:  dbRun(nil, runReconcile),
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileCSV, "csv", "", "external statement CSV (required)")
	reconcileCmd.MarkFlagRequired("csv")
}

func runReconcile(ctx context.Context, s *session, args []string) error {
	external, err := reconcile.LoadExternal(reconcileCSV, s.log)
	if err != nil {
		return err
	}

	txs, err := s.queries.ListAllTransactions(ctx)
	if err != nil {
		return err
	}
	s.log.Debug().Int("database", len(txs)).Int("statement", len(external)).Msg("reconciling")

	reconcile.Reconcile(txs, external).Print(s.ui)
	return nil
}
