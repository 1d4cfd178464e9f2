package analytics

import (
	"testing"
	"time"

	"budgetbook/internal/core"
)

// Wednesday 2024-03-20; week starts Sunday 2024-03-17.
var now = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func tx(id int64, cents int64, cat core.Category, y, m, d int) core.Transaction {
	return core.Transaction{ID: id, Title: "t", Amount: core.Money{Cents: cents}, Category: cat, Date: core.NewDate(y, m, d)}
}

func TestTotals(t *testing.T) {
	txs := []core.Transaction{
		tx(1, 1000, core.CategoryGroceries, 2024, 3, 20),      // today
		tx(2, 2000, core.CategoryDining, 2024, 3, 18),         // this week
		tx(3, 4000, core.CategoryUtilities, 2024, 3, 2),       // this month
		tx(4, 3000, core.CategoryGroceries, 2024, 2, 25),      // trailing 30 days only
		tx(5, 9000, core.CategoryTravel, 2023, 11, 1),         // outside everything
	}
	got := Totals(txs, now)
	if got.Today.Cents != 1000 {
		t.Fatalf("today %d", got.Today.Cents)
	}
	if got.ThisWeek.Cents != 3000 {
		t.Fatalf("week %d", got.ThisWeek.Cents)
	}
	if got.ThisMonth.Cents != 7000 {
		t.Fatalf("month %d", got.ThisMonth.Cents)
	}
	// 1000+2000+4000+3000 over a fixed 30-day divisor.
	if got.DailyAverage.Cents != 10000/30 {
		t.Fatalf("daily average %d", got.DailyAverage.Cents)
	}
}

func TestTotalsCountFutureDates(t *testing.T) {
	// An entry dated later this week already counts toward the week and the
	// month, but never toward today.
	txs := []core.Transaction{
		tx(1, 1000, core.CategoryGroceries, 2024, 3, 20),
		tx(2, 5000, core.CategoryEntertainment, 2024, 3, 22),
	}
	got := Totals(txs, now)
	if got.Today.Cents != 1000 {
		t.Fatalf("today %d", got.Today.Cents)
	}
	if got.ThisWeek.Cents != 6000 {
		t.Fatalf("week %d", got.ThisWeek.Cents)
	}
	if got.ThisMonth.Cents != 6000 {
		t.Fatalf("month %d", got.ThisMonth.Cents)
	}
}

func TestTotalsEmpty(t *testing.T) {
	got := Totals(nil, now)
	if got.Today.Cents != 0 || got.DailyAverage.Cents != 0 {
		t.Fatalf("empty totals %+v", got)
	}
}

func TestCategoryTotalsNormalizes(t *testing.T) {
	txs := []core.Transaction{
		tx(1, 100, core.CategoryGroceries, 2024, 3, 1),
		tx(2, 200, core.CategoryGroceries, 2024, 3, 2),
		tx(3, 300, core.Category("mystery"), 2024, 3, 3),
	}
	got := CategoryTotals(txs)
	if got[core.CategoryGroceries].Cents != 300 {
		t.Fatalf("groceries %d", got[core.CategoryGroceries].Cents)
	}
	if got[core.CategoryOther].Cents != 300 {
		t.Fatalf("unknown category should fold into other: %v", got)
	}
	if _, ok := got[core.CategoryDining]; ok {
		t.Fatalf("zero category must be omitted")
	}
}

func TestAnalyzeGrowthAndTrend(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr int64
		wantGrowth float64
		wantTrend  Trend
	}{
		{"increasing", 10000, 15000, 50, TrendIncreasing},
		{"decreasing", 10000, 5000, -50, TrendDecreasing},
		{"stable", 10000, 10500, 5, TrendStable},
		{"zero previous month", 0, 5000, 0, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []core.Transaction
			if tt.prev > 0 {
				txs = append(txs, tx(1, tt.prev, core.CategoryGroceries, 2024, 2, 10))
			}
			txs = append(txs, tx(2, tt.curr, core.CategoryGroceries, 2024, 3, 10))
			got := Analyze(txs, now)
			if got.MonthlyGrowth != tt.wantGrowth {
				t.Fatalf("growth %v, want %v", got.MonthlyGrowth, tt.wantGrowth)
			}
			if got.Trend != tt.wantTrend {
				t.Fatalf("trend %s, want %s", got.Trend, tt.wantTrend)
			}
		})
	}
}

func TestAnalyzeSummary(t *testing.T) {
	txs := []core.Transaction{
		tx(1, 1000, core.CategoryGroceries, 2024, 3, 1),
		tx(2, 5000, core.CategoryTravel, 2024, 3, 5),
		tx(3, 3000, core.CategoryGroceries, 2024, 3, 10),
	}
	got := Analyze(txs, now)
	if got.Count != 3 {
		t.Fatalf("count %d", got.Count)
	}
	if got.Average.Cents != 3000 {
		t.Fatalf("average %d", got.Average.Cents)
	}
	if got.MostExpensive == nil || got.MostExpensive.ID != 2 {
		t.Fatalf("most expensive %+v", got.MostExpensive)
	}
	if got.TopCategory != core.CategoryGroceries {
		t.Fatalf("top category %s", got.TopCategory)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	got := Analyze(nil, now)
	if got.Count != 0 || got.MostExpensive != nil || got.Trend != TrendStable {
		t.Fatalf("empty analysis %+v", got)
	}
}

func TestPredictNextMonth(t *testing.T) {
	txs := []core.Transaction{
		// Groceries in all three trailing months: mean of 300/400/500.
		tx(1, 30000, core.CategoryGroceries, 2024, 1, 10),
		tx(2, 40000, core.CategoryGroceries, 2024, 2, 10),
		tx(3, 50000, core.CategoryGroceries, 2024, 3, 10),
		// Travel appears once: projects at that month's full level.
		tx(4, 20000, core.CategoryTravel, 2024, 2, 15),
		// Outside the window, ignored.
		tx(5, 99000, core.CategoryDining, 2023, 12, 1),
	}
	got := PredictNextMonth(txs, now)
	if got.ByCategory[core.CategoryGroceries].Cents != 40000 {
		t.Fatalf("groceries prediction %d", got.ByCategory[core.CategoryGroceries].Cents)
	}
	if got.ByCategory[core.CategoryTravel].Cents != 20000 {
		t.Fatalf("travel prediction %d", got.ByCategory[core.CategoryTravel].Cents)
	}
	if got.Total.Cents != 60000 {
		t.Fatalf("total prediction %d", got.Total.Cents)
	}
	if _, ok := got.ByCategory[core.CategoryDining]; ok {
		t.Fatalf("out-of-window month leaked into prediction")
	}
}

func TestPredictEmpty(t *testing.T) {
	got := PredictNextMonth(nil, now)
	if got.Total.Cents != 0 || len(got.ByCategory) != 0 {
		t.Fatalf("empty prediction %+v", got)
	}
}

func TestHealthScoreEmptyLedger(t *testing.T) {
	got := HealthScore(nil, core.Money{Cents: 100_000}, nil, now)
	// excellent budget 40 + poor tracking 15 + fair diversification 10 + no goals 0.
	if got.Score != 65 {
		t.Fatalf("score %d", got.Score)
	}
	if len(got.Factors) != 4 {
		t.Fatalf("factors %+v", got.Factors)
	}
}

func TestHealthScoreZeroBudget(t *testing.T) {
	got := HealthScore(nil, core.Money{}, nil, now)
	if got.Factors[0].Rating != "poor" || got.Factors[0].Points != 10 {
		t.Fatalf("zero budget factor %+v", got.Factors[0])
	}
	if got.Score != 35 {
		t.Fatalf("score %d", got.Score)
	}
}

func TestHealthScoreBudgetTiers(t *testing.T) {
	tests := []struct {
		spent  int64
		points int
	}{
		{40_000, 40},  // 40%
		{70_000, 30},  // 70%
		{85_000, 20},  // 85%
		{120_000, 10}, // over budget
	}
	for _, tt := range tests {
		txs := []core.Transaction{tx(1, tt.spent, core.CategoryGroceries, 2024, 3, 20)}
		got := HealthScore(txs, core.Money{Cents: 100_000}, nil, now)
		if got.Factors[0].Points != tt.points {
			t.Fatalf("spent %d: budget factor %+v", tt.spent, got.Factors[0])
		}
	}
}

func TestHealthScoreTrackingAndDiversification(t *testing.T) {
	// Five categories over five consecutive days ending today: consistency
	// 100%, diversification excellent.
	txs := []core.Transaction{
		tx(1, 1000, core.CategoryGroceries, 2024, 3, 16),
		tx(2, 1000, core.CategoryDining, 2024, 3, 17),
		tx(3, 1000, core.CategoryTravel, 2024, 3, 18),
		tx(4, 1000, core.CategoryUtilities, 2024, 3, 19),
		tx(5, 1000, core.CategoryEntertainment, 2024, 3, 20),
	}
	got := HealthScore(txs, core.Money{Cents: 100_000}, nil, now)
	// 40 budget + 30 tracking + 20 diversification + 0 goals.
	if got.Score != 90 {
		t.Fatalf("score %d, factors %+v", got.Score, got.Factors)
	}
}

func TestHealthScoreGoals(t *testing.T) {
	inProgress := []core.SavingsGoal{{ID: 1, Name: "fund", TargetAmount: core.Money{Cents: 1000}}}
	if got := HealthScore(nil, core.Money{}, inProgress, now); got.Factors[3].Points != 5 {
		t.Fatalf("in-progress goals factor %+v", got.Factors[3])
	}
	done := []core.SavingsGoal{{ID: 1, Name: "fund", TargetAmount: core.Money{Cents: 1000}, IsCompleted: true}}
	if got := HealthScore(nil, core.Money{}, done, now); got.Factors[3].Points != 10 {
		t.Fatalf("completed goals factor %+v", got.Factors[3])
	}
}

func TestRecommendations(t *testing.T) {
	pred := Prediction{
		Total: core.Money{Cents: 95_000},
		ByCategory: map[core.Category]core.Money{
			core.CategoryGroceries: {Cents: 70_000},
			core.CategoryDining:    {Cents: 10_000},
		},
	}
	caps := map[core.Category]core.Money{
		core.CategoryGroceries: {Cents: 50_000},
		core.CategoryDining:    {Cents: 20_000},
	}
	got := Recommendations(pred, core.Money{Cents: 100_000}, caps)
	if len(got) != 2 {
		t.Fatalf("recommendations %+v", got)
	}
	if got[0].Kind != RecommendBudgetIncrease || got[0].Suggested.Cents != 104_500 {
		t.Fatalf("budget recommendation %+v", got[0])
	}
	if got[1].Kind != RecommendReallocation || got[1].Category != core.CategoryGroceries {
		t.Fatalf("reallocation %+v", got[1])
	}
}

func TestRecommendationsQuiet(t *testing.T) {
	pred := Prediction{Total: core.Money{Cents: 10_000}, ByCategory: map[core.Category]core.Money{}}
	if got := Recommendations(pred, core.Money{Cents: 100_000}, nil); len(got) != 0 {
		t.Fatalf("expected no recommendations, got %+v", got)
	}
}
