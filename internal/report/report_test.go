package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/storage"
)

var now = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func TestMonthly(t *testing.T) {
	ctx := context.Background()
	l := ledger.Open(ctx, storage.NewMemoryStore(), ledger.WithClock(func() time.Time { return now }))

	_ = l.SetBudget(ctx, core.Money{Cents: 100_000})
	_, _ = l.AddTransaction(ctx, "supermarket", core.Money{Cents: 30_000}, core.CategoryGroceries, core.NewDate(2024, 3, 5))
	_, _ = l.AddTransaction(ctx, "cinema", core.Money{Cents: 2_500}, core.CategoryEntertainment, core.NewDate(2024, 3, 12))
	// Last month, excluded from the monthly sections but counted in totals.
	_, _ = l.AddTransaction(ctx, "old bill", core.Money{Cents: 10_000}, core.CategoryUtilities, core.NewDate(2024, 2, 10))

	out := Monthly(l, now)

	for _, want := range []string{
		"# Budget Report: March 2024",
		"| Monthly budget | 1000.00 |",
		"| Spent this month | 325.00 |",
		"| Total recorded | 425.00 |",
		"| Entries this month | 2 |",
		"| groceries | 300.00 |",
		"| entertainment | 25.00 |",
		"| 2024-03-05 | supermarket | groceries | 300.00 |",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "old bill") {
		t.Fatalf("last month's entry leaked into the monthly report:\n%s", out)
	}
}

func TestMonthlyEmpty(t *testing.T) {
	l := ledger.Open(context.Background(), storage.NewMemoryStore())
	out := Monthly(l, now)
	if !strings.Contains(out, "No spending recorded this month.") {
		t.Fatalf("empty report:\n%s", out)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(now); got != "report_2024-03.md" {
		t.Fatalf("file name %q", got)
	}
}
