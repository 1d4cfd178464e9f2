// Package report renders a monthly markdown summary of the ledger. The
// document is a write-only artifact: nothing ever reads it back.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"budgetbook/internal/analytics"
	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/query"
)

const maxRecentEntries = 15

// Monthly renders the report for now's calendar month.
func Monthly(l *ledger.Ledger, now time.Time) string {
	txs := query.Apply(l.Transactions(), query.Filter{Period: query.PeriodThisMonth}, now)
	stats := l.Stats()
	totals := analytics.CategoryTotals(txs)

	var monthTotal int64
	for _, tx := range txs {
		monthTotal += tx.Amount.Cents
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Budget Report: %s\n\n", now.Format("January 2006"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Monthly budget | %s |\n", stats.Budget)
	fmt.Fprintf(&b, "| Spent this month | %s |\n", core.Money{Cents: monthTotal})
	fmt.Fprintf(&b, "| Total recorded | %s |\n", stats.TotalExpenses)
	fmt.Fprintf(&b, "| Remaining balance | %s |\n", stats.Balance)
	fmt.Fprintf(&b, "| Budget used | %.1f%% |\n", stats.Percentage)
	fmt.Fprintf(&b, "| Entries this month | %d |\n\n", len(txs))

	b.WriteString("## By category\n\n")
	if len(totals) == 0 {
		b.WriteString("No spending recorded this month.\n\n")
	} else {
		b.WriteString("| Category | Amount |\n|---|---|\n")
		for _, c := range sortedCategories(totals) {
			fmt.Fprintf(&b, "| %s | %s |\n", c, totals[c])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recent transactions\n\n")
	if len(txs) == 0 {
		b.WriteString("None.\n")
	} else {
		b.WriteString("| Date | Title | Category | Amount |\n|---|---|---|---|\n")
		recent := txs
		if len(recent) > maxRecentEntries {
			recent = recent[:maxRecentEntries]
		}
		for _, tx := range recent {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", tx.Date, tx.Title, tx.Category, tx.Amount)
		}
	}
	return b.String()
}

// FileName returns the suggested artifact name, e.g. "report_2024-03.md".
func FileName(now time.Time) string {
	return "report_" + core.DateOf(now).MonthKey() + ".md"
}

// sortedCategories orders by amount descending, name ascending on ties.
func sortedCategories(totals map[core.Category]core.Money) []core.Category {
	out := make([]core.Category, 0, len(totals))
	for c := range totals {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := totals[out[i]], totals[out[j]]
		if a.Cents != b.Cents {
			return a.Cents > b.Cents
		}
		return out[i] < out[j]
	})
	return out
}
