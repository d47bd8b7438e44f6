// Package reconcile compares ledger transactions against an external
// statement and reports what matches, what differs and what is missing.
package reconcile

import (
	"fmt"

	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/ui"
	"github.com/willfong/fund-playground/internal/utils"
)

// Pair links a ledger transaction to a statement row
type Pair struct {
	DB       *models.Transaction
	External models.ExternalTransaction
	Type     string
}

// Report is the outcome of a reconciliation run
type Report struct {
	// Same normalized type and equal amount
	Matched []Pair
	// Same normalized type, different amount
	Mismatched []Pair

	OnlyInDB  []*models.Transaction
	OnlyInCSV []models.ExternalTransaction
}

// Balanced reports whether every record on both sides matched exactly
func (r *Report) Balanced() bool {
	return len(r.Mismatched) == 0 && len(r.OnlyInDB) == 0 && len(r.OnlyInCSV) == 0
}

// Reconcile pairs ledger transactions with statement rows. For each ledger
// row, in order, it first looks for an unconsumed statement row with the same
// type and amount, then for one with the same type only. Each record on
// either side is consumed at most once.
func Reconcile(db []*models.Transaction, ext []models.ExternalTransaction) *Report {
	report := &Report{}
	usedExt := make([]bool, len(ext))
	usedDB := make([]bool, len(db))

	for i, tx := range db {
		txType := tx.NormalizedType()

		if j := findExternal(ext, usedExt, func(e models.ExternalTransaction) bool {
			return e.Type == txType && e.Amount.Equal(tx.Amount)
		}); j >= 0 {
			usedDB[i], usedExt[j] = true, true
			report.Matched = append(report.Matched, Pair{DB: tx, External: ext[j], Type: txType})
			continue
		}

		if j := findExternal(ext, usedExt, func(e models.ExternalTransaction) bool {
			return e.Type == txType
		}); j >= 0 {
			usedDB[i], usedExt[j] = true, true
			report.Mismatched = append(report.Mismatched, Pair{DB: tx, External: ext[j], Type: txType})
		}
	}

	for i, tx := range db {
		if !usedDB[i] {
			report.OnlyInDB = append(report.OnlyInDB, tx)
		}
	}
	for j, e := range ext {
		if !usedExt[j] {
			report.OnlyInCSV = append(report.OnlyInCSV, e)
		}
	}

	return report
}

func findExternal(ext []models.ExternalTransaction, used []bool, match func(models.ExternalTransaction) bool) int {
	for j, e := range ext {
		if !used[j] && match(e) {
			return j
		}
	}
	return -1
}

// Print writes the report in four sections. Empty sections print "None".
func (r *Report) Print(u *ui.UI) {
	u.Println(u.Header("Reconciliation Report"))

	section(u, "Transactions Found in Both Systems (Exact Match on Type & Amount)", len(r.Matched), func(i int) string {
		p := r.Matched[i]
		return fmt.Sprintf("MATCH: DB ID %d (%s %s) with CSV ID %s (%s %s, Ref: %s)",
			p.DB.ID, utils.FormatAmount(p.DB.Amount), p.Type,
			p.External.ExternalID, utils.FormatAmount(p.External.Amount), p.External.Type, p.External.Reference)
	})

	section(u, "Potential Matches with Mismatched Amounts (Same Type)", len(r.Mismatched), func(i int) string {
		p := r.Mismatched[i]
		return fmt.Sprintf("MISMATCH_AMOUNT: DB ID %d (%s %s) vs CSV ID %s (%s %s, Ref: %s)",
			p.DB.ID, utils.FormatAmount(p.DB.Amount), p.Type,
			p.External.ExternalID, utils.FormatAmount(p.External.Amount), p.External.Type, p.External.Reference)
	})

	section(u, "Transactions Only in Database", len(r.OnlyInDB), func(i int) string {
		tx := r.OnlyInDB[i]
		return fmt.Sprintf("DB ID: %d, Type: %s, Amount: %s, Desc: %s",
			tx.ID, tx.Type, utils.FormatAmount(tx.Amount), tx.Description.String)
	})

	section(u, "Transactions Only in CSV File", len(r.OnlyInCSV), func(i int) string {
		e := r.OnlyInCSV[i]
		return fmt.Sprintf("CSV ID: %s, Type: %s, Amount: %s, Ref: %s",
			e.ExternalID, e.Type, utils.FormatAmount(e.Amount), e.Reference)
	})

	u.Println(u.SummaryBox("Summary", []ui.KV{
		{Key: "Matched", Value: fmt.Sprint(len(r.Matched))},
		{Key: "Mismatched", Value: fmt.Sprint(len(r.Mismatched))},
		{Key: "Only in DB", Value: fmt.Sprint(len(r.OnlyInDB))},
		{Key: "Only in CSV", Value: fmt.Sprint(len(r.OnlyInCSV))},
		{Key: "Status", Value: status(r)},
	}))
}

func section(u *ui.UI, title string, n int, line func(int) string) {
	u.Section(title)
	if n == 0 {
		u.Println(u.Muted("  None"))
		return
	}
	for i := 0; i < n; i++ {
		u.Println("  " + line(i))
	}
}

func status(r *Report) string {
	if r.Balanced() {
		return "success"
	}
	return "discrepancies found"
}
