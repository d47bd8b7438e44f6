package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/reconcile"
)

type fakeLister struct {
	txs []*models.Transaction
	err error
}

func (f *fakeLister) ListAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return f.txs, f.err
}

func sampleTransactions() []*models.Transaction {
	created := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	return []*models.Transaction{
		{
			ID:          1,
			ToAccountID: sql.NullInt64{Int64: 1, Valid: true},
			Type:        models.TxTypeDeposit,
			Amount:      decimal.RequireFromString("77.77"),
			Description: models.NullString("Test deposit, with comma"),
			CreatedAt:   created,
		},
		{
			ID:            2,
			FromAccountID: sql.NullInt64{Int64: 1, Valid: true},
			ToAccountID:   sql.NullInt64{Int64: 2, Valid: true},
			Type:          models.TxTypeTransfer,
			Amount:        decimal.RequireFromString("5"),
			Notes:         models.NullString("rent"),
			CreatedAt:     created,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	w, err := NewCSVWriter(CSVWriterConfig{OutputDir: dir, Filename: "rows", Headers: []string{"a", "b"}})
	require.NoError(t, err)

	require.NoError(t, w.WriteRow([]string{"1", "x"}))
	require.NoError(t, w.WriteRow([]string{"2", "y"}))
	assert.Equal(t, int64(2), w.RowCount())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.Error(t, w.WriteRow([]string{"3", "z"}))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x"}, {"2", "y"}}, readCSV(t, filepath.Join(dir, "rows.csv")))
}

func TestExportTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("statement", func(t *testing.T) {
		res, err := ExportTransactions(ctx, &fakeLister{txs: sampleTransactions()}, t.TempDir(), FormatStatement)
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Rows)

		records := readCSV(t, res.Path)
		assert.Equal(t, []string{"transaction_id", "amount", "type", "reference"}, records[0])
		assert.Equal(t, []string{"1", "77.77", "DEPOSIT", "Test deposit, with comma"}, records[1])
		assert.Equal(t, []string{"2", "5.00", "INTERNAL_TRANSFER", ""}, records[2])
	})

	t.Run("full", func(t *testing.T) {
		res, err := ExportTransactions(ctx, &fakeLister{txs: sampleTransactions()}, t.TempDir(), FormatFull)
		require.NoError(t, err)

		records := readCSV(t, res.Path)
		require.Len(t, records, 3)
		assert.Len(t, records[0], 8)
		assert.Equal(t, []string{"1", "", "1", "DEPOSIT", "77.77", "Test deposit, with comma", "", "2024-03-09 08:30:00"}, records[1])
		assert.Equal(t, "rent", records[2][6])
	})

	t.Run("statement reconciles against its source", func(t *testing.T) {
		txs := sampleTransactions()
		res, err := ExportTransactions(ctx, &fakeLister{txs: txs}, t.TempDir(), FormatStatement)
		require.NoError(t, err)

		ext, err := reconcile.LoadExternal(res.Path, zerolog.Nop())
		require.NoError(t, err)
		require.Len(t, ext, 2, "every exported row must load back")
		assert.True(t, ext[0].Amount.Equal(decimal.RequireFromString("77.77")))
		assert.Equal(t, models.ExtTypeInternalTransfer, ext[1].Type)

		report := reconcile.Reconcile(txs, ext)
		assert.True(t, report.Balanced())
		assert.Len(t, report.Matched, 2)
	})

	t.Run("store error", func(t *testing.T) {
		_, err := ExportTransactions(ctx, &fakeLister{err: errors.New("gone")}, t.TempDir(), FormatStatement)
		assert.Error(t, err)
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("full")
	require.NoError(t, err)
	assert.Equal(t, FormatFull, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
