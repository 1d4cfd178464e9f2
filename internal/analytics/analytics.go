// Package analytics derives read-only figures from a transaction snapshot:
// period aggregates, spending analysis, next-month prediction, the financial
// health score and budget recommendations. Every function is pure and never
// errors on empty input.
package analytics

import (
	"math"
	"time"

	"budgetbook/internal/core"
)

// PeriodTotals are the dashboard sums. DailyAverage is the trailing 30-day
// sum divided by 30, regardless of how many of those days saw spending.
type PeriodTotals struct {
	Today        core.Money `json:"today"`
	ThisWeek     core.Money `json:"thisWeek"`
	ThisMonth    core.Money `json:"thisMonth"`
	DailyAverage core.Money `json:"dailyAverage"`
}

// Totals computes the period aggregates with the same boundary rules as the
// query engine: weeks start Sunday, windows check the lower boundary only, so
// a future-dated entry already counts toward its week and month.
func Totals(txs []core.Transaction, now time.Time) PeriodTotals {
	today := core.DateOf(now)
	weekStart := core.StartOfWeek(now)
	monthStart := core.StartOfMonth(now)
	windowStart := core.DaysBack(now, 30)

	var t PeriodTotals
	var trailing int64
	for _, tx := range txs {
		if tx.Date.SameDay(today) {
			t.Today.Cents += tx.Amount.Cents
		}
		if !tx.Date.Before(weekStart.Time) {
			t.ThisWeek.Cents += tx.Amount.Cents
		}
		if !tx.Date.Before(monthStart.Time) {
			t.ThisMonth.Cents += tx.Amount.Cents
		}
		if !tx.Date.Before(windowStart.Time) {
			trailing += tx.Amount.Cents
		}
	}
	t.DailyAverage = core.Money{Cents: trailing / 30}
	return t
}

// CategoryTotals sums spending per category. Unknown categories fold into
// "other"; categories with no spending are omitted.
func CategoryTotals(txs []core.Transaction) map[core.Category]core.Money {
	out := map[core.Category]core.Money{}
	for _, tx := range txs {
		c := tx.Category.Normalize()
		m := out[c]
		m.Cents += tx.Amount.Cents
		out[c] = m
	}
	return out
}

type Trend string

const (
	TrendStable     Trend = "stable"
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// Analysis is the spending-pattern summary.
type Analysis struct {
	Count         int               `json:"transactionCount"`
	Average       core.Money        `json:"averageTransaction"`
	MostExpensive *core.Transaction `json:"mostExpensive,omitempty"`
	TopCategory   core.Category     `json:"mostFrequentCategory,omitempty"`
	MonthlyGrowth float64           `json:"monthlyGrowth"`
	Trend         Trend             `json:"trend"`
}

// Analyze summarizes spending patterns. Growth compares the current calendar
// month to the previous one; a zero previous month reads as stable growth 0
// rather than an infinity.
func Analyze(txs []core.Transaction, now time.Time) Analysis {
	a := Analysis{Count: len(txs), Trend: TrendStable}
	if len(txs) == 0 {
		return a
	}

	var total int64
	counts := map[core.Category]int{}
	for i := range txs {
		total += txs[i].Amount.Cents
		counts[txs[i].Category.Normalize()]++
		if a.MostExpensive == nil || txs[i].Amount.Cents > a.MostExpensive.Amount.Cents {
			tx := txs[i]
			a.MostExpensive = &tx
		}
	}
	a.Average = core.Money{Cents: (total + int64(len(txs))/2) / int64(len(txs))}

	best := 0
	for c, n := range counts {
		if n > best || (n == best && (a.TopCategory == "" || c < a.TopCategory)) {
			best = n
			a.TopCategory = c
		}
	}

	currKey := core.DateOf(now).MonthKey()
	prevKey := core.MonthsBack(now, 1).MonthKey()
	var curr, prev int64
	for _, tx := range txs {
		switch tx.Date.MonthKey() {
		case currKey:
			curr += tx.Amount.Cents
		case prevKey:
			prev += tx.Amount.Cents
		}
	}
	if prev > 0 {
		a.MonthlyGrowth = float64(curr-prev) / float64(prev) * 100
		switch {
		case a.MonthlyGrowth > 10:
			a.Trend = TrendIncreasing
		case a.MonthlyGrowth < -10:
			a.Trend = TrendDecreasing
		}
	}
	return a
}

// Prediction estimates next month's spending from the trailing three calendar
// months (current month included). Each category's estimate is the mean over
// only the months in which it appears, so a category seen in a single month
// projects at that month's full level. That upward bias for sparse categories
// matches the historical behaviour of the data format and is kept.
type Prediction struct {
	Total      core.Money                   `json:"total"`
	ByCategory map[core.Category]core.Money `json:"byCategory"`
}

func PredictNextMonth(txs []core.Transaction, now time.Time) Prediction {
	keys := [3]string{
		core.DateOf(now).MonthKey(),
		core.MonthsBack(now, 1).MonthKey(),
		core.MonthsBack(now, 2).MonthKey(),
	}

	perMonth := map[core.Category]map[string]int64{}
	for _, tx := range txs {
		mk := tx.Date.MonthKey()
		if mk != keys[0] && mk != keys[1] && mk != keys[2] {
			continue
		}
		c := tx.Category.Normalize()
		if perMonth[c] == nil {
			perMonth[c] = map[string]int64{}
		}
		perMonth[c][mk] += tx.Amount.Cents
	}

	p := Prediction{ByCategory: map[core.Category]core.Money{}}
	for c, months := range perMonth {
		var sum int64
		for _, v := range months {
			sum += v
		}
		mean := (sum + int64(len(months))/2) / int64(len(months))
		p.ByCategory[c] = core.Money{Cents: mean}
		p.Total.Cents += mean
	}
	return p
}

// HealthFactor is one scored dimension of the health report.
type HealthFactor struct {
	Name   string `json:"name"`
	Rating string `json:"rating"`
	Points int    `json:"points"`
}

type Health struct {
	Score   int            `json:"score"`
	Factors []HealthFactor `json:"factors"`
}

// HealthScore rates the ledger on four factors and sums their points,
// clamping to [0,100]. All factors populate even on an empty ledger; a zero
// budget rates budget adherence as poor rather than dropping the factor.
func HealthScore(txs []core.Transaction, budget core.Money, goals []core.SavingsGoal, now time.Time) Health {
	var h Health

	h.Factors = append(h.Factors, budgetFactor(txs, budget))
	h.Factors = append(h.Factors, trackingFactor(txs, now))
	h.Factors = append(h.Factors, diversificationFactor(txs))
	h.Factors = append(h.Factors, goalsFactor(goals))

	for _, f := range h.Factors {
		h.Score += f.Points
	}
	if h.Score < 0 {
		h.Score = 0
	}
	if h.Score > 100 {
		h.Score = 100
	}
	return h
}

func budgetFactor(txs []core.Transaction, budget core.Money) HealthFactor {
	f := HealthFactor{Name: "budget adherence", Rating: "poor", Points: 10}
	if budget.Cents <= 0 {
		return f
	}
	var total int64
	for _, tx := range txs {
		total += tx.Amount.Cents
	}
	used := float64(total) / float64(budget.Cents) * 100
	switch {
	case used <= 50:
		f.Rating, f.Points = "excellent", 40
	case used <= 75:
		f.Rating, f.Points = "good", 30
	case used <= 90:
		f.Rating, f.Points = "fair", 20
	}
	return f
}

// trackingFactor measures how regularly expenses are recorded: distinct
// spending days over the days elapsed since the first recorded expense.
func trackingFactor(txs []core.Transaction, now time.Time) HealthFactor {
	f := HealthFactor{Name: "expense tracking", Rating: "poor", Points: 15}
	if len(txs) == 0 {
		return f
	}

	days := map[string]struct{}{}
	first := txs[0].Date
	for _, tx := range txs {
		days[tx.Date.String()] = struct{}{}
		if tx.Date.Before(first.Time) {
			first = tx.Date
		}
	}
	span := math.Ceil(core.DateOf(now).Sub(first.Time).Hours()/24) + 1
	if span < 1 {
		span = 1
	}
	consistency := float64(len(days)) / span * 100
	switch {
	case consistency >= 80:
		f.Rating, f.Points = "excellent", 30
	case consistency >= 60:
		f.Rating, f.Points = "good", 25
	case consistency >= 40:
		f.Rating, f.Points = "fair", 20
	}
	return f
}

func diversificationFactor(txs []core.Transaction) HealthFactor {
	f := HealthFactor{Name: "category diversification", Rating: "fair", Points: 10}
	seen := map[core.Category]struct{}{}
	for _, tx := range txs {
		seen[tx.Category.Normalize()] = struct{}{}
	}
	switch {
	case len(seen) >= 5:
		f.Rating, f.Points = "excellent", 20
	case len(seen) >= 3:
		f.Rating, f.Points = "good", 15
	}
	return f
}

func goalsFactor(goals []core.SavingsGoal) HealthFactor {
	f := HealthFactor{Name: "savings goals", Rating: "none", Points: 0}
	if len(goals) == 0 {
		return f
	}
	f.Rating, f.Points = "in progress", 5
	for _, g := range goals {
		if g.IsCompleted {
			f.Rating, f.Points = "achieving", 10
			break
		}
	}
	return f
}
