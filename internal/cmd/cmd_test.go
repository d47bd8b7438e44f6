package cmd

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/fund-playground/internal/config"
	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/ui"
)

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount("-25.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("-25.5")))

	_, err = parseAmount("lots")
	assert.Error(t, err)
}

func TestCheckLimit(t *testing.T) {
	assert.NoError(t, checkLimit(1))
	assert.NoError(t, checkLimit(50))
	assert.Error(t, checkLimit(0))
	assert.Error(t, checkLimit(-5))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+10.00", signed(decimal.NewFromInt(10)))
	assert.Equal(t, "-0.50", signed(decimal.RequireFromString("-0.5")))
}

func TestGenerateOverrides(t *testing.T) {
	require.NoError(t, generateCmd.Flags().Set("count", "25"))
	require.NoError(t, generateCmd.Flags().Set("max", "20.00"))

	cfg := config.DefaultConfig()
	generateOverrides(generateCmd, cfg)

	assert.Equal(t, 25, cfg.Generate.Count)
	assert.Equal(t, "20.00", cfg.Generate.MaxAmount)
	// Unchanged flags keep the configured value
	assert.Equal(t, config.GenerateMinAmount, cfg.Generate.MinAmount)
	assert.Equal(t, int64(0), cfg.Generate.Seed)
}

func TestEmbeddedSchemas(t *testing.T) {
	schema, err := schemaFS.ReadFile("schemas/schema.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS accounts")
	assert.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS transactions")

	fixture, err := schemaFS.ReadFile("schemas/fixture.sql")
	require.NoError(t, err)
	assert.Contains(t, string(fixture), "969.25")
	assert.Contains(t, string(fixture), "'Bob The Builder'")
}

func TestRenderTransactions(t *testing.T) {
	u := ui.NewPlain(&bytes.Buffer{})

	assert.Equal(t, "  No transactions found.", renderTransactions(u, nil))

	out := renderTransactions(u, []*models.Transaction{{
		ID:            7,
		FromAccountID: sql.NullInt64{Int64: 1, Valid: true},
		ToAccountID:   sql.NullInt64{Int64: 2, Valid: true},
		Type:          models.TxTypeTransfer,
		Amount:        decimal.RequireFromString("12.5"),
		Description:   models.NullString("Lunch"),
		CreatedAt:     time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}})

	for _, want := range []string{"ID", "TRANSFER", "12.50", "Lunch", "2024-03-01 09:30:00"} {
		assert.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "generate", "verify", "accounts", "transactions", "reconcile", "watch", "schema", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
