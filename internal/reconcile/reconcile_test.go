package reconcile

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/ui"
)

func dbTx(id int64, txType models.TransactionType, amount string, from, to int64) *models.Transaction {
	t := &models.Transaction{ID: id, Type: txType, Amount: decimal.RequireFromString(amount)}
	if from != 0 {
		t.FromAccountID = sql.NullInt64{Int64: from, Valid: true}
	}
	if to != 0 {
		t.ToAccountID = sql.NullInt64{Int64: to, Valid: true}
	}
	return t
}

func ext(id, amount, txType string) models.ExternalTransaction {
	return models.ExternalTransaction{ExternalID: id, Amount: decimal.RequireFromString(amount), Type: txType, Reference: "ref-" + id}
}

func TestReadExternal(t *testing.T) {
	t.Run("parses rows", func(t *testing.T) {
		var logs bytes.Buffer
		input := "external_id,amount,type,reference\n" +
			"E1, 77.77 ,deposit, inv-1\n" +
			"E2,12.5,TRANSFER_OUT,inv-2\n" +
			"E3,abc,DEPOSIT,bad\n" +
			"E4,1.00\n"

		txs, err := ReadExternal(strings.NewReader(input), zerolog.New(&logs))
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "E1", txs[0].ExternalID)
		assert.Equal(t, "DEPOSIT", txs[0].Type)
		assert.Equal(t, "inv-1", txs[0].Reference)
		assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("77.77")))
		assert.Equal(t, "TRANSFER_OUT", txs[1].Type)

		assert.Contains(t, logs.String(), "invalid amount")
		assert.Contains(t, logs.String(), "malformed")
	})

	t.Run("empty file", func(t *testing.T) {
		txs, err := ReadExternal(strings.NewReader(""), zerolog.Nop())
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("header only", func(t *testing.T) {
		txs, err := ReadExternal(strings.NewReader("external_id,amount,type,reference\n"), zerolog.Nop())
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadExternal(filepath.Join(t.TempDir(), "nope.csv"), zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "statement.csv")
		require.NoError(t, os.WriteFile(path, []byte("id,amount,type,ref\nX,5.00,DEPOSIT,r\n"), 0644))

		txs, err := LoadExternal(path, zerolog.Nop())
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}

func TestReconcile(t *testing.T) {
	t.Run("exact match wins over earlier type-only candidate", func(t *testing.T) {
		db := []*models.Transaction{dbTx(1, models.TxTypeDeposit, "50.00", 0, 1)}
		statement := []models.ExternalTransaction{ext("A", "10.00", "DEPOSIT"), ext("B", "50", "DEPOSIT")}

		r := Reconcile(db, statement)
		require.Len(t, r.Matched, 1)
		assert.Equal(t, "B", r.Matched[0].External.ExternalID)
		assert.Empty(t, r.Mismatched)
		require.Len(t, r.OnlyInCSV, 1)
		assert.Equal(t, "A", r.OnlyInCSV[0].ExternalID)
	})

	t.Run("type only match is a mismatch", func(t *testing.T) {
		db := []*models.Transaction{dbTx(1, models.TxTypeWithdrawal, "20.00", 1, 0)}
		statement := []models.ExternalTransaction{ext("A", "21.00", "WITHDRAWAL")}

		r := Reconcile(db, statement)
		assert.Empty(t, r.Matched)
		require.Len(t, r.Mismatched, 1)
		assert.Equal(t, int64(1), r.Mismatched[0].DB.ID)
		assert.False(t, r.Balanced())
	})

	t.Run("transfers are normalized", func(t *testing.T) {
		db := []*models.Transaction{
			dbTx(1, models.TxTypeTransfer, "5.00", 1, 2),
			dbTx(2, models.TxTypeTransfer, "6.00", 1, 0),
			dbTx(3, models.TxTypeTransfer, "7.00", 0, 2),
		}
		statement := []models.ExternalTransaction{
			ext("C", "7.00", "TRANSFER_IN"),
			ext("B", "6.00", "TRANSFER_OUT"),
			ext("A", "5.00", "INTERNAL_TRANSFER"),
		}

		r := Reconcile(db, statement)
		assert.Len(t, r.Matched, 3)
		assert.True(t, r.Balanced())
	})

	t.Run("each record consumed once", func(t *testing.T) {
		db := []*models.Transaction{
			dbTx(1, models.TxTypeDeposit, "10.00", 0, 1),
			dbTx(2, models.TxTypeDeposit, "10.00", 0, 1),
			dbTx(3, models.TxTypeDeposit, "10.00", 0, 1),
		}
		statement := []models.ExternalTransaction{ext("A", "10.00", "DEPOSIT"), ext("A", "10.00", "DEPOSIT")}

		r := Reconcile(db, statement)
		assert.Len(t, r.Matched, 2)
		require.Len(t, r.OnlyInDB, 1)
		assert.Equal(t, int64(3), r.OnlyInDB[0].ID)
		assert.Empty(t, r.OnlyInCSV)
	})

	t.Run("empty inputs", func(t *testing.T) {
		r := Reconcile(nil, nil)
		assert.True(t, r.Balanced())
	})
}

func TestReportPrint(t *testing.T) {
	var buf bytes.Buffer
	db := []*models.Transaction{dbTx(4, models.TxTypeDeposit, "77.77", 0, 1)}
	db[0].Description = models.NullString("Test deposit")

	r := Reconcile(db, []models.ExternalTransaction{ext("Z", "1", "WITHDRAWAL")})
	r.Print(ui.NewPlain(&buf))

	out := buf.String()
	assert.Contains(t, out, "DB ID: 4, Type: DEPOSIT, Amount: 77.77, Desc: Test deposit")
	assert.Contains(t, out, "CSV ID: Z, Type: WITHDRAWAL, Amount: 1.00, Ref: ref-Z")
	assert.Contains(t, out, "  None")
	assert.Contains(t, out, "discrepancies found")
}
