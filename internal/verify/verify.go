// Package verify asserts facts about the live fixture data: the balance of a
// known account and the existence of a known holder. Checks are read-only and
// independent of each other.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/willfong/fund-playground/internal/config"
	"github.com/willfong/fund-playground/internal/database"
	"github.com/willfong/fund-playground/internal/utils"
)

// Store is the subset of database.Queries the checks need
type Store interface {
	GetAccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	AccountHolderExists(ctx context.Context, holder string) (bool, error)
}

// Failure is an assertion that did not hold. Store errors are returned as
// themselves, never as a Failure.
type Failure struct {
	Check   string
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// IsFailure reports whether err is an assertion failure
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// CheckBalance asserts the stored balance of accountID equals expected
// exactly, to the cent
func CheckBalance(ctx context.Context, store Store, accountID int64, expected decimal.Decimal) error {
	balance, err := store.GetAccountBalance(ctx, accountID)
	if errors.Is(err, database.ErrNotFound) {
		return &Failure{
			Check:   "balance",
			Message: fmt.Sprintf("Account with ID %d was not found.", accountID),
		}
	}
	if err != nil {
		return err
	}

	if !balance.Equal(expected) {
		return &Failure{
			Check: "balance",
			Message: fmt.Sprintf("balance of account %d should be %s but was %s",
				accountID, utils.FormatAmount(expected), utils.FormatAmount(balance)),
		}
	}
	return nil
}

// CheckHolderExists asserts an active account with exactly this holder
// name exists
func CheckHolderExists(ctx context.Context, store Store, holder string) error {
	ok, err := store.AccountHolderExists(ctx, holder)
	if err != nil {
		return err
	}
	if !ok {
		return &Failure{
			Check:   "holder",
			Message: fmt.Sprintf("Account for '%s' was not found.", holder),
		}
	}
	return nil
}

// Check is one named assertion
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome is the result of running one check
type Outcome struct {
	Name string
	Err  error
}

// Passed reports whether the check held
func (o Outcome) Passed() bool {
	return o.Err == nil
}

// Checks builds the fixture checks from configuration
func Checks(store Store, cfg config.VerifyConfig) ([]Check, error) {
	expected, err := decimal.NewFromString(cfg.ExpectedBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid expected balance %q: %w", cfg.ExpectedBalance, err)
	}

	return []Check{
		{
			Name: fmt.Sprintf("account %d balance", cfg.AccountID),
			Run: func(ctx context.Context) error {
				return CheckBalance(ctx, store, cfg.AccountID, expected)
			},
		},
		{
			Name: fmt.Sprintf("holder %q exists", cfg.Holder),
			Run: func(ctx context.Context) error {
				return CheckHolderExists(ctx, store, cfg.Holder)
			},
		},
	}, nil
}

// RunAll runs every check in order. A failing check does not stop the
// others.
func RunAll(ctx context.Context, checks []Check) []Outcome {
	outcomes := make([]Outcome, 0, len(checks))
	for _, c := range checks {
		outcomes = append(outcomes, Outcome{Name: c.Name, Err: c.Run(ctx)})
	}
	return outcomes
}

// AllPassed reports whether every outcome passed
func AllPassed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if !o.Passed() {
			return false
		}
	}
	return true
}
