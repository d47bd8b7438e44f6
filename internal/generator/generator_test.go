package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deposit struct {
	accountID   int64
	amount      decimal.Decimal
	description string
}

// fakeStore records committed deposits and fails the calls listed in failOn
type fakeStore struct {
	ids     []int64
	idsErr  error
	failOn  map[int]bool
	calls   int
	applied []deposit
}

func (s *fakeStore) ActiveAccountIDs(ctx context.Context) ([]int64, error) {
	return s.ids, s.idsErr
}

func (s *fakeStore) ExecuteDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (int64, error) {
	s.calls++
	if s.failOn[s.calls] {
		return 0, errors.New("lock wait timeout")
	}
	s.applied = append(s.applied, deposit{accountID, amount, description})
	return int64(1000 + s.calls), nil
}

func testConfig() Config {
	return Config{
		MinAmount:        decimal.RequireFromString("5.00"),
		MaxAmount:        decimal.RequireFromString("500.00"),
		DescriptionWords: 4,
		Seed:             42,
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("all deposits commit", func(t *testing.T) {
		store := &fakeStore{ids: []int64{1, 2, 3}}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)

		res, err := gen.Run(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, res.Requested)
		assert.Equal(t, 10, res.Succeeded)
		assert.Equal(t, 0, res.Failed)
		assert.Equal(t, 3, res.AccountCount)
		require.Len(t, store.applied, 10)

		total := decimal.Zero
		for _, d := range store.applied {
			assert.Contains(t, store.ids, d.accountID)
			assert.True(t, d.amount.GreaterThanOrEqual(testConfig().MinAmount), d.amount.String())
			assert.True(t, d.amount.LessThanOrEqual(testConfig().MaxAmount), d.amount.String())
			assert.True(t, d.amount.Equal(d.amount.Round(2)), "amount %s has sub-cent digits", d.amount)
			assert.True(t, strings.HasSuffix(d.description, "."))
			total = total.Add(d.amount)
		}
		assert.True(t, total.Equal(res.Total))
	})

	t.Run("failed pairs are skipped", func(t *testing.T) {
		store := &fakeStore{ids: []int64{7}, failOn: map[int]bool{2: true, 5: true}}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)

		var seen []Deposit
		gen.OnDeposit = func(d Deposit) { seen = append(seen, d) }

		res, err := gen.Run(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Succeeded)
		assert.Equal(t, 2, res.Failed)
		assert.Len(t, store.applied, 4)

		require.Len(t, seen, 6)
		assert.False(t, seen[1].Committed())
		assert.True(t, seen[2].Committed())
		assert.Equal(t, int64(1003), seen[2].TransactionID)
	})

	t.Run("no active accounts", func(t *testing.T) {
		store := &fakeStore{}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)

		res, err := gen.Run(ctx, 10)
		require.NoError(t, err)
		assert.True(t, res.NoAccounts())
		assert.Equal(t, 0, res.Succeeded)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("account load error", func(t *testing.T) {
		store := &fakeStore{idsErr: errors.New("connection refused")}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)

		_, err = gen.Run(ctx, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("zero count", func(t *testing.T) {
		store := &fakeStore{ids: []int64{1}}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)

		res, err := gen.Run(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Succeeded)
		assert.True(t, res.Total.IsZero())
	})

	t.Run("cancellation stops between iterations", func(t *testing.T) {
		store := &fakeStore{ids: []int64{1, 2}}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		gen.OnDeposit = func(d Deposit) {
			if d.Index == 2 {
				cancel()
			}
		}

		res, err := gen.Run(cctx, 10)
		require.Error(t, err)
		assert.True(t, IsCanceled(err))
		assert.Equal(t, 3, res.Succeeded)
		assert.Equal(t, 3, store.calls)
	})
}

func TestSeededRunsRepeat(t *testing.T) {
	run := func() []deposit {
		store := &fakeStore{ids: []int64{1, 2, 3, 4}}
		gen, err := New(store, testConfig(), zerolog.Nop())
		require.NoError(t, err)
		_, err = gen.Run(context.Background(), 5)
		require.NoError(t, err)
		return store.applied
	}

	a, b := run(), run()
	require.Len(t, a, 5)
	for i := range a {
		assert.Equal(t, a[i].accountID, b[i].accountID)
		assert.True(t, a[i].amount.Equal(b[i].amount))
		assert.Equal(t, a[i].description, b[i].description)
	}
}

func TestNewRejectsInvertedRange(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAmount = decimal.RequireFromString("1.00")

	_, err := New(&fakeStore{}, cfg, zerolog.Nop())
	assert.Error(t, err)
}
