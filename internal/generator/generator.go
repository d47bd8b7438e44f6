// Package generator creates synthetic deposits against the live ledger.
//
// Each iteration picks an active account uniformly at random, draws an amount
// rounded up to cents and a short description, then credits the account and
// records the deposit in one database transaction. A failed pair is rolled
// back and logged; the run continues with the next iteration.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/willfong/fund-playground/internal/data"
	"github.com/willfong/fund-playground/internal/utils"
)

// Store is the subset of database.Queries the generator needs
type Store interface {
	ActiveAccountIDs(ctx context.Context) ([]int64, error)
	ExecuteDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (int64, error)
}

// Config holds settings for a generation run
type Config struct {
	MinAmount        decimal.Decimal
	MaxAmount        decimal.Decimal
	DescriptionWords int
	Seed             int64
}

// Deposit describes one iteration, committed or not
type Deposit struct {
	Index         int
	AccountID     int64
	Amount        decimal.Decimal
	Description   string
	TransactionID int64
	Err           error
}

// Committed reports whether the deposit pair was committed
func (d Deposit) Committed() bool {
	return d.Err == nil
}

// Result holds statistics from a generation run
type Result struct {
	Requested    int
	Succeeded    int
	Failed       int
	AccountCount int
	Total        decimal.Decimal
	Seed         uint64
	Duration     time.Duration
}

// NoAccounts reports whether the run was skipped because nothing was active
func (r *Result) NoAccounts() bool {
	return r.AccountCount == 0
}

// Generator drives deposit generation
type Generator struct {
	store Store
	words *data.WordList
	rng   *utils.Random
	cfg   Config
	log   zerolog.Logger

	// OnStart is called once account ids are loaded, before the first iteration
	OnStart func(accounts, count int)
	// OnDeposit is called after every iteration
	OnDeposit func(Deposit)
}

// New creates a generator. The word list is loaded from embedded data.
func New(store Store, cfg Config, log zerolog.Logger) (*Generator, error) {
	words, err := data.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}

	if cfg.MaxAmount.LessThan(cfg.MinAmount) {
		return nil, fmt.Errorf("max amount %s is below min amount %s",
			utils.FormatAmount(cfg.MaxAmount), utils.FormatAmount(cfg.MinAmount))
	}

	return &Generator{
		store: store,
		words: words,
		rng:   utils.NewRandom(cfg.Seed),
		cfg:   cfg,
		log:   log,
	}, nil
}

// Run attempts count deposits. Account ids are read once up front; when none
// are active the run returns an empty result without error. Cancelling ctx
// stops the run between iterations and returns the partial result together
// with the context error.
func (g *Generator) Run(ctx context.Context, count int) (*Result, error) {
	start := time.Now()
	result := &Result{
		Requested: count,
		Total:     decimal.Zero,
		Seed:      g.rng.Seed(),
	}

	ids, err := g.store.ActiveAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active accounts: %w", err)
	}
	result.AccountCount = len(ids)
	if len(ids) == 0 {
		g.log.Warn().Msg("no active accounts, nothing to generate")
		return result, nil
	}

	g.log.Debug().
		Int("accounts", len(ids)).
		Int("count", count).
		Uint64("seed", result.Seed).
		Msg("starting deposit generation")

	if g.OnStart != nil {
		g.OnStart(len(ids), count)
	}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("generation stopped after %d of %d: %w", i, count, err)
		}

		dep := g.next(i, ids)
		dep.TransactionID, dep.Err = g.store.ExecuteDeposit(ctx, dep.AccountID, dep.Amount, dep.Description)

		if dep.Err != nil {
			result.Failed++
			g.log.Error().
				Err(dep.Err).
				Int("iteration", i+1).
				Int64("account_id", dep.AccountID).
				Str("amount", utils.FormatAmount(dep.Amount)).
				Msg("deposit rolled back")
		} else {
			result.Succeeded++
			result.Total = result.Total.Add(dep.Amount)
			g.log.Debug().
				Int("iteration", i+1).
				Int64("account_id", dep.AccountID).
				Int64("transaction_id", dep.TransactionID).
				Str("amount", utils.FormatAmount(dep.Amount)).
				Msg("deposit committed")
		}

		if g.OnDeposit != nil {
			g.OnDeposit(dep)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// next draws the account, amount and description for iteration i
func (g *Generator) next(i int, ids []int64) Deposit {
	return Deposit{
		Index:       i,
		AccountID:   g.rng.PickInt64(ids),
		Amount:      utils.RandomAmount(g.rng, g.cfg.MinAmount, g.cfg.MaxAmount),
		Description: g.words.Sentence(g.rng, g.cfg.DescriptionWords),
	}
}

// IsCanceled reports whether err came from a cancelled run
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
