package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/ui"
)

type fakeStore struct {
	accounts  []*models.Account
	listErr   error
	insertErr error
	inserted  []Deposit
}

func (s *fakeStore) ListActiveAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.accounts, s.listErr
}

func (s *fakeStore) InsertDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, Deposit{accountID, amount, description})
	return int64(100 + len(s.inserted)), nil
}

func testDeposit() Deposit {
	return Deposit{AccountID: 1, Amount: decimal.RequireFromString("77.77"), Description: "Test deposit from fundctl"}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("lists then inserts", func(t *testing.T) {
		var buf bytes.Buffer
		store := &fakeStore{accounts: []*models.Account{
			{ID: 1, Holder: "Alice", Balance: decimal.RequireFromString("969.25")},
			{ID: 2, Holder: "Bob The Builder", Balance: decimal.RequireFromString("5")},
		}}

		res, err := New(store, ui.NewPlain(&buf), zerolog.Nop()).Run(ctx, testDeposit())
		require.NoError(t, err)
		assert.Equal(t, int64(101), res.TransactionID)
		assert.Len(t, res.Accounts, 2)
		require.Len(t, store.inserted, 1)
		assert.Equal(t, "77.77", store.inserted[0].Amount.StringFixed(2))

		out := buf.String()
		assert.Contains(t, out, "  Account ID: 1, Holder: Alice, Balance: 969.25")
		assert.Contains(t, out, "  Account ID: 2, Holder: Bob The Builder, Balance: 5.00")
		assert.Contains(t, out, "Successfully inserted transaction with ID: 101")
	})

	t.Run("empty table still inserts", func(t *testing.T) {
		var buf bytes.Buffer
		store := &fakeStore{}

		res, err := New(store, ui.NewPlain(&buf), zerolog.Nop()).Run(ctx, testDeposit())
		require.NoError(t, err)
		assert.Empty(t, res.Accounts)
		assert.Contains(t, buf.String(), "No active accounts found.")
		assert.Len(t, store.inserted, 1)
	})

	t.Run("not idempotent", func(t *testing.T) {
		store := &fakeStore{}
		r := New(store, ui.NewPlain(&bytes.Buffer{}), zerolog.Nop())

		first, err := r.Run(ctx, testDeposit())
		require.NoError(t, err)
		second, err := r.Run(ctx, testDeposit())
		require.NoError(t, err)
		assert.NotEqual(t, first.TransactionID, second.TransactionID)
		assert.Len(t, store.inserted, 2)
	})

	t.Run("list failure skips insert", func(t *testing.T) {
		store := &fakeStore{listErr: errors.New("access denied")}

		_, err := New(store, ui.NewPlain(&bytes.Buffer{}), zerolog.Nop()).Run(ctx, testDeposit())
		require.Error(t, err)
		assert.Empty(t, store.inserted)
	})

	t.Run("insert failure keeps listing", func(t *testing.T) {
		store := &fakeStore{
			accounts:  []*models.Account{{ID: 1, Holder: "Alice"}},
			insertErr: errors.New("fk violation"),
		}

		res, err := New(store, ui.NewPlain(&bytes.Buffer{}), zerolog.Nop()).Run(ctx, testDeposit())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fk violation")
		require.NotNil(t, res)
		assert.Len(t, res.Accounts, 1)
	})
}
