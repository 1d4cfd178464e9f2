// Package query narrows and orders transaction lists for display. All
// functions are pure: they take a snapshot and return a fresh slice, never
// touching ledger state.
package query

import (
	"sort"
	"strings"
	"time"

	"budgetbook/internal/core"
)

type Period string

const (
	PeriodAll       Period = "all"
	PeriodToday     Period = "today"
	PeriodThisWeek  Period = "thisWeek"
	PeriodThisMonth Period = "thisMonth"
	PeriodLastThree Period = "last3Months"
)

type Sort string

const (
	SortDateDesc   Sort = "date-desc"
	SortDateAsc    Sort = "date-asc"
	SortAmountDesc Sort = "amount-desc"
	SortAmountAsc  Sort = "amount-asc"
	SortCategory   Sort = "category"
)

// Filter combines a free-text search, a category, a period window and a sort
// order. Zero values mean "no restriction" with the default date-descending
// order.
type Filter struct {
	Search   string
	Category core.Category
	Period   Period
	Sort     Sort
}

// Apply narrows list by every set criterion, then orders the result. Ties
// keep insertion order. The input slice is never mutated.
func Apply(list []core.Transaction, f Filter, now time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(list))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, tx := range list {
		if search != "" && !matches(tx, search) {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if !inPeriod(tx.Date, f.Period, now) {
			continue
		}
		out = append(out, tx)
	}
	order(out, f.Sort)
	return out
}

// matches reports whether the search term appears in the title or the
// category name, case-insensitively.
func matches(tx core.Transaction, search string) bool {
	return strings.Contains(strings.ToLower(tx.Title), search) ||
		strings.Contains(strings.ToLower(string(tx.Category)), search)
}

// inPeriod checks the lower boundary only; a date past today still belongs to
// its window. Future dates are legal on interactive entry, so "this week"
// includes the rest of the week.
func inPeriod(d core.Date, p Period, now time.Time) bool {
	switch p {
	case PeriodToday:
		return d.SameDay(core.DateOf(now))
	case PeriodThisWeek:
		return !d.Before(core.StartOfWeek(now).Time)
	case PeriodThisMonth:
		return !d.Before(core.StartOfMonth(now).Time)
	case PeriodLastThree:
		return !d.Before(core.MonthsBack(now, 3).Time)
	default:
		return true
	}
}

func order(list []core.Transaction, s Sort) {
	var less func(a, b core.Transaction) bool
	switch s {
	case SortDateAsc:
		less = func(a, b core.Transaction) bool { return a.Date.Before(b.Date.Time) }
	case SortAmountDesc:
		less = func(a, b core.Transaction) bool { return a.Amount.Cents > b.Amount.Cents }
	case SortAmountAsc:
		less = func(a, b core.Transaction) bool { return a.Amount.Cents < b.Amount.Cents }
	case SortCategory:
		less = func(a, b core.Transaction) bool { return a.Category < b.Category }
	default:
		less = func(a, b core.Transaction) bool { return b.Date.Before(a.Date.Time) }
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
