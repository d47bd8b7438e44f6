package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/config"
	"github.com/willfong/fund-playground/internal/export"
	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/ui"
	"github.com/willfong/fund-playground/internal/utils"
)

var (
	txAccountID   int64
	txLimit       int
	txDescription string
	txNotes       string
	exportDir     string
	exportFormat  string
)

// transactionsCmd groups transaction maintenance
var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Inspect and maintain transactions",
	Long: `Inspect and maintain rows in the transactions table, move funds between
accounts and export the table to CSV.

Example:
  fundctl transactions list --account 1
  fundctl transactions transfer 1 2 25.00 --description "Lunch"
  fundctl transactions export --dir ./output`,
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first for a single account",
	Args:  cobra.NoArgs,
	Run:   dbRun(nil, runTransactionsList),
}

var transactionsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	Run:   dbRun(nil, runTransactionsShow),
}

var transactionsDescribeCmd = &cobra.Command{
	Use:   "describe ID DESCRIPTION",
	Short: "Replace a transaction's description",
	Args:  cobra.ExactArgs(2),
	Run:   dbRun(nil, runTransactionsDescribe),
}

var transactionsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a transaction row (balances are not reverted)",
	Args:  cobra.ExactArgs(1),
	Run:   dbRun(nil, runTransactionsDelete),
}

var transactionsTransferCmd = &cobra.Command{
	Use:   "transfer FROM TO AMOUNT",
	Short: "Move funds between two active accounts",
	Long: `Debit FROM, credit TO and record one TRANSFER row in a single database
transaction. Both accounts must be active and FROM must hold at least AMOUNT.`,
	Args: cobra.ExactArgs(3),
	Run:  dbRun(nil, runTransactionsTransfer),
}

var transactionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the transactions table to CSV",
	Long: `Write every transaction, ordered by id, to DIR/transactions.csv.

Formats:
  statement  transaction_id,amount,type,reference (readable by reconcile)
  full       every column of the transactions table`,
	Args: cobra.NoArgs,
	Run:  dbRun(nil, runTransactionsExport),
}

func init() {
	rootCmd.AddCommand(transactionsCmd)
	transactionsCmd.AddCommand(transactionsListCmd, transactionsShowCmd, transactionsDescribeCmd,
		transactionsDeleteCmd, transactionsTransferCmd, transactionsExportCmd)

	transactionsListCmd.Flags().Int64Var(&txAccountID, "account", 0, "only transactions touching this account")
	transactionsListCmd.Flags().IntVar(&txLimit, "limit", 50, "maximum rows when --account is set")

	transactionsTransferCmd.Flags().StringVar(&txDescription, "description", "", "transaction description")
	transactionsTransferCmd.Flags().StringVar(&txNotes, "notes", "", "free-form notes")

	transactionsExportCmd.Flags().StringVar(&exportDir, "dir", config.ExportDir, "output directory")
	transactionsExportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatStatement), "statement or full")
}

func runTransactionsList(ctx context.Context, s *session, args []string) error {
	var (
		txs []*models.Transaction
		err error
	)
	if txAccountID > 0 {
		if err := checkLimit(txLimit); err != nil {
			return err
		}
		txs, err = s.queries.ListAccountTransactions(ctx, txAccountID, txLimit)
	} else {
		txs, err = s.queries.ListAllTransactions(ctx)
	}
	if err != nil {
		return err
	}

	s.ui.Section("Transactions")
	s.ui.Println(renderTransactions(s.ui, txs))
	return nil
}

func runTransactionsShow(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	t, err := s.queries.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	u := s.ui
	u.Println()
	u.Println(u.KeyValue("Transaction ID", strconv.FormatInt(t.ID, 10)))
	u.Println(u.KeyValue("Type", string(t.Type)))
	u.Println(u.KeyValue("From", orDash(export.FormatNullInt64(t.FromAccountID))))
	u.Println(u.KeyValue("To", orDash(export.FormatNullInt64(t.ToAccountID))))
	u.Println(u.KeyValue("Amount", utils.FormatAmount(t.Amount)))
	u.Println(u.KeyValue("Description", orDash(t.Description.String)))
	u.Println(u.KeyValue("Notes", orDash(t.Notes.String)))
	u.Println(u.KeyValue("Created", export.FormatTime(t.CreatedAt)))
	return nil
}

func runTransactionsDescribe(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := s.queries.UpdateDescription(ctx, id, args[1]); err != nil {
		return err
	}
	s.ui.Println(s.ui.Success(fmt.Sprintf("Transaction %d updated", id)))
	return nil
}

func runTransactionsDelete(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := s.queries.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.ui.Println(s.ui.Success(fmt.Sprintf("Transaction %d deleted", id)))
	return nil
}

func runTransactionsTransfer(ctx context.Context, s *session, args []string) error {
	from, err := parseID(args[0])
	if err != nil {
		return err
	}
	to, err := parseID(args[1])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}

	result, err := s.queries.ExecuteTransfer(ctx, from, to, amount, txDescription, txNotes)
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	s.log.Debug().
		Int64("transaction_id", result.TransactionID).
		Int64("from", from).
		Int64("to", to).
		Str("amount", utils.FormatAmount(amount)).
		Msg("transfer committed")

	u := s.ui
	u.Println(u.Success(fmt.Sprintf("Transferred %s from account %d to account %d (transaction %d)",
		utils.FormatAmount(amount), from, to, result.TransactionID)))
	u.Println(u.KeyValue(fmt.Sprintf("Account %d", from), utils.FormatAmount(result.NewSourceBalance)))
	u.Println(u.KeyValue(fmt.Sprintf("Account %d", to), utils.FormatAmount(result.NewDestBalance)))
	return nil
}

func runTransactionsExport(ctx context.Context, s *session, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	spin := s.ui.NewSpinner("Exporting transactions")
	spin.Start()
	result, err := export.ExportTransactions(ctx, s.queries, exportDir, format)
	if err != nil {
		spin.Error("failed")
		return err
	}
	spin.Success(fmt.Sprintf("%d rows", result.Rows))

	s.ui.Println(s.ui.Success("Output written to: " + result.Path))
	return nil
}

// renderTransactions formats transactions as a table
func renderTransactions(u *ui.UI, txs []*models.Transaction) string {
	if len(txs) == 0 {
		return "  No transactions found."
	}

	rows := make([][]string, len(txs))
	for i, t := range txs {
		rows[i] = []string{
			strconv.FormatInt(t.ID, 10),
			string(t.Type),
			export.FormatNullInt64(t.FromAccountID),
			export.FormatNullInt64(t.ToAccountID),
			utils.FormatAmount(t.Amount),
			t.Description.String,
			export.FormatTime(t.CreatedAt),
		}
	}
	return u.Table([]string{"ID", "Type", "From", "To", "Amount", "Description", "Created"}, rows, 0, 4)
}

// checkLimit rejects row limits the server would refuse
func checkLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
