package verify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/fund-playground/internal/config"
	"github.com/willfong/fund-playground/internal/database"
)

type fakeStore struct {
	balances map[int64]decimal.Decimal
	holders  map[string]bool
	err      error
}

func (s *fakeStore) GetAccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	b, ok := s.balances[accountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("account %d: %w", accountID, database.ErrNotFound)
	}
	return b, nil
}

func (s *fakeStore) AccountHolderExists(ctx context.Context, holder string) (bool, error) {
	return s.holders[holder], s.err
}

func fixtureStore() *fakeStore {
	return &fakeStore{
		balances: map[int64]decimal.Decimal{1: decimal.RequireFromString("969.25")},
		holders:  map[string]bool{"Bob The Builder": true},
	}
}

func TestCheckBalance(t *testing.T) {
	ctx := context.Background()
	expected := decimal.RequireFromString("969.25")

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, CheckBalance(ctx, fixtureStore(), 1, expected))
	})

	t.Run("trailing zeros are equal", func(t *testing.T) {
		store := fixtureStore()
		store.balances[1] = decimal.RequireFromString("969.250")
		assert.NoError(t, CheckBalance(ctx, store, 1, expected))
	})

	t.Run("off by one cent", func(t *testing.T) {
		store := fixtureStore()
		store.balances[1] = decimal.RequireFromString("969.26")

		err := CheckBalance(ctx, store, 1, expected)
		require.Error(t, err)
		assert.True(t, IsFailure(err))
		assert.Equal(t, "balance of account 1 should be 969.25 but was 969.26", err.Error())
	})

	t.Run("missing account", func(t *testing.T) {
		err := CheckBalance(ctx, fixtureStore(), 2, expected)
		require.Error(t, err)
		assert.True(t, IsFailure(err))
		assert.Equal(t, "Account with ID 2 was not found.", err.Error())
	})

	t.Run("store error is not a failure", func(t *testing.T) {
		store := &fakeStore{err: errors.New("connection reset")}

		err := CheckBalance(ctx, store, 1, expected)
		require.Error(t, err)
		assert.False(t, IsFailure(err))
	})
}

func TestCheckHolderExists(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, CheckHolderExists(ctx, fixtureStore(), "Bob The Builder"))

	err := CheckHolderExists(ctx, fixtureStore(), "bob the builder")
	require.Error(t, err)
	assert.Equal(t, "Account for 'bob the builder' was not found.", err.Error())
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore()
	store.balances[1] = decimal.RequireFromString("1.00")

	checks, err := Checks(store, config.DefaultConfig().Verify)
	require.NoError(t, err)
	require.Len(t, checks, 2)

	outcomes := RunAll(ctx, checks)
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Passed())
	assert.True(t, outcomes[1].Passed())
	assert.False(t, AllPassed(outcomes))
}

func TestChecksRejectBadExpectation(t *testing.T) {
	cfg := config.DefaultConfig().Verify
	cfg.ExpectedBalance = "lots"

	_, err := Checks(fixtureStore(), cfg)
	assert.Error(t, err)
}

// The checks against the real query layer, driven through sqlmock
func TestChecksWithQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	pool := database.NewPoolFromDB(db, config.DefaultConfig().Database)
	defer pool.Close()
	queries := database.NewQueries(pool)

	mock.ExpectQuery("SELECT balance FROM accounts").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("969.25"))
	mock.ExpectQuery("SELECT 1 FROM accounts").
		WithArgs("Bob The Builder").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	checks, err := Checks(queries, config.DefaultConfig().Verify)
	require.NoError(t, err)

	outcomes := RunAll(context.Background(), checks)
	assert.True(t, outcomes[0].Passed())
	require.False(t, outcomes[1].Passed())
	assert.Equal(t, "Account for 'Bob The Builder' was not found.", outcomes[1].Err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}
