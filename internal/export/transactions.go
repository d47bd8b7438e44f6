// Package export writes ledger tables to CSV files.
package export

import (
	"context"
	"fmt"
	"strconv"

	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/utils"
)

// Format selects the column layout of a transactions export
type Format string

const (
	// FormatStatement matches what reconcile.LoadExternal reads
	FormatStatement Format = "statement"
	// FormatFull carries every column of the transactions table
	FormatFull Format = "full"
)

var (
	statementHeaders = []string{"transaction_id", "amount", "type", "reference"}
	fullHeaders      = []string{"transaction_id", "from_account_id", "to_account_id", "transaction_type",
		"amount", "description", "notes", "created_at"}
)

// Lister is the subset of database.Queries the export needs
type Lister interface {
	ListAllTransactions(ctx context.Context) ([]*models.Transaction, error)
}

// Result describes a finished export
type Result struct {
	Path string
	Rows int64
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatStatement, FormatFull:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want %s or %s)", s, FormatStatement, FormatFull)
}

// ExportTransactions writes every transaction, ordered by id, to
// dir/transactions.csv
func ExportTransactions(ctx context.Context, store Lister, dir string, format Format) (*Result, error) {
	txs, err := store.ListAllTransactions(ctx)
	if err != nil {
		return nil, err
	}

	headers, row := statementHeaders, statementRow
	if format == FormatFull {
		headers, row = fullHeaders, fullRow
	}

	w, err := NewCSVWriter(CSVWriterConfig{
		OutputDir: dir,
		Filename:  "transactions",
		Headers:   headers,
	})
	if err != nil {
		return nil, err
	}

	for _, tx := range txs {
		if err := w.WriteRow(row(tx)); err != nil {
			w.Close()
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &Result{Path: w.Path(), Rows: w.RowCount()}, nil
}

// statementRow uses the normalized type so a fresh export reconciles
// cleanly against the same ledger
func statementRow(tx *models.Transaction) []string {
	return []string{
		strconv.FormatInt(tx.ID, 10),
		utils.FormatAmount(tx.Amount),
		tx.NormalizedType(),
		tx.Description.String,
	}
}

func fullRow(tx *models.Transaction) []string {
	return []string{
		strconv.FormatInt(tx.ID, 10),
		FormatNullInt64(tx.FromAccountID),
		FormatNullInt64(tx.ToAccountID),
		string(tx.Type),
		utils.FormatAmount(tx.Amount),
		tx.Description.String,
		tx.Notes.String,
		FormatTime(tx.CreatedAt),
	}
}
