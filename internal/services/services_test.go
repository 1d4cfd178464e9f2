package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/storage"
)

var testNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func TestDuenessThresholds(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		daysAgo   int
		want      bool
	}{
		{"daily same day", core.Daily, 0, false},
		{"daily next day", core.Daily, 1, true},
		{"weekly six days", core.Weekly, 6, false},
		{"weekly seven days", core.Weekly, 7, true},
		{"monthly 29 days", core.Monthly, 29, false},
		{"monthly 30 days", core.Monthly, 30, true},
		{"yearly 364 days", core.Yearly, 364, false},
		{"yearly 365 days", core.Yearly, 365, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := GetDuenessChecker(tt.frequency)
			if err != nil {
				t.Fatalf("checker: %v", err)
			}
			last := testNow.AddDate(0, 0, -tt.daysAgo)
			if got := checker.IsDue(last, testNow); got != tt.want {
				t.Fatalf("IsDue %d days ago = %v, want %v", tt.daysAgo, got, tt.want)
			}
		})
	}
}

func TestDuenessNeverProcessed(t *testing.T) {
	checker, _ := GetDuenessChecker(core.Daily)
	if !checker.IsDue(time.Time{}, testNow) {
		t.Fatalf("zero lastProcessed must be due")
	}
}

func TestDuenessUnknownFrequency(t *testing.T) {
	if _, err := GetDuenessChecker(core.Frequency("fortnightly")); err == nil {
		t.Fatalf("expected error for unknown frequency")
	}
}

func newProcessor(t *testing.T) (*RecurringProcessor, *ledger.Ledger, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	l := ledger.Open(context.Background(), store, ledger.WithClock(testClock))
	p := NewRecurringProcessor(store, l).WithClock(testClock)
	return p, l, store
}

func TestProcessDueMaterializes(t *testing.T) {
	ctx := context.Background()
	p, l, _ := newProcessor(t)

	tpl, err := p.AddTemplate(ctx, core.RecurringTemplate{
		Title:     "gym",
		Amount:    core.Money{Cents: 4500},
		Category:  core.CategoryFitness,
		Frequency: core.Monthly,
	})
	if err != nil {
		t.Fatalf("add template: %v", err)
	}
	if tpl.ID != 1 || !tpl.LastProcessed.IsZero() {
		t.Fatalf("template %+v", tpl)
	}

	n, err := p.ProcessDue(ctx)
	if err != nil || n != 1 {
		t.Fatalf("process: n=%d err=%v", n, err)
	}

	txs := l.Transactions()
	if len(txs) != 1 {
		t.Fatalf("transactions %+v", txs)
	}
	if txs[0].Title != "gym (Recurring)" || !txs[0].IsRecurring {
		t.Fatalf("materialized %+v", txs[0])
	}

	// Second run on the same day is a no-op.
	n, err = p.ProcessDue(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second run: n=%d err=%v", n, err)
	}

	templates, _ := p.Templates(ctx)
	if !templates[0].LastProcessed.Equal(testNow) {
		t.Fatalf("lastProcessed %v", templates[0].LastProcessed)
	}
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newProcessor(t)

	tpl, _ := p.AddTemplate(ctx, core.RecurringTemplate{
		Title: "rent", Amount: core.Money{Cents: 80000}, Category: core.CategoryUtilities, Frequency: core.Monthly,
	})
	if err := p.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.DeleteTemplate(ctx, tpl.ID); !errors.Is(err, core.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewGoalService(storage.NewMemoryStore()).WithClock(testClock)

	g, err := s.AddGoal(ctx, core.SavingsGoal{Name: "vacation", TargetAmount: core.Money{Cents: 50_000}})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if g.ID != 1 || g.CurrentAmount.Cents != 0 || g.IsCompleted {
		t.Fatalf("goal %+v", g)
	}

	g, err = s.Contribute(ctx, g.ID, core.Money{Cents: 20_000})
	if err != nil || g.IsCompleted {
		t.Fatalf("partial contribution: %+v err=%v", g, err)
	}
	g, err = s.Contribute(ctx, g.ID, core.Money{Cents: 30_000})
	if err != nil {
		t.Fatalf("final contribution: %v", err)
	}
	if !g.IsCompleted || g.Progress() != 100 {
		t.Fatalf("goal should be completed: %+v", g)
	}

	if _, err := s.Contribute(ctx, g.ID, core.Money{Cents: 100}); !errors.Is(err, core.ErrGoalCompleted) {
		t.Fatalf("expected ErrGoalCompleted, got %v", err)
	}
	if _, err := s.Contribute(ctx, 999, core.Money{Cents: 100}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}

	if err := s.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	goals, _ := s.Goals(ctx)
	if len(goals) != 0 {
		t.Fatalf("goals after delete: %+v", goals)
	}
}

func TestCapsSeededOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := NewAlertService(store).WithClock(testClock)

	caps, err := s.Caps(ctx)
	if err != nil {
		t.Fatalf("caps: %v", err)
	}
	if caps[core.CategoryGroceries].Cents != 50_000 {
		t.Fatalf("default groceries cap %d", caps[core.CategoryGroceries].Cents)
	}

	if err := s.SetCap(ctx, core.CategoryGroceries, core.Money{Cents: 75_000}); err != nil {
		t.Fatalf("set cap: %v", err)
	}
	caps, _ = s.Caps(ctx)
	if caps[core.CategoryGroceries].Cents != 75_000 {
		t.Fatalf("updated cap %d", caps[core.CategoryGroceries].Cents)
	}
}

func TestCheckCapsRaisesAtNinetyPercent(t *testing.T) {
	ctx := context.Background()
	s := NewAlertService(storage.NewMemoryStore()).WithClock(testClock)

	txs := []core.Transaction{
		// 90% of the 500 groceries cap, this month.
		{ID: 1, Title: "a", Amount: core.Money{Cents: 45_000}, Category: core.CategoryGroceries, Date: core.NewDate(2024, 3, 5)},
		// Under threshold.
		{ID: 2, Title: "b", Amount: core.Money{Cents: 1_000}, Category: core.CategoryDining, Date: core.NewDate(2024, 3, 6)},
		// Over cap but last month, ignored.
		{ID: 3, Title: "c", Amount: core.Money{Cents: 99_000}, Category: core.CategoryShopping, Date: core.NewDate(2024, 2, 10)},
	}
	raised, err := s.CheckCaps(ctx, txs)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(raised) != 1 || raised[0].Category != core.CategoryGroceries {
		t.Fatalf("raised %+v", raised)
	}

	log, _ := s.Notifications(ctx)
	if len(log) != 1 || log[0].Read {
		t.Fatalf("log %+v", log)
	}
	if err := s.MarkRead(ctx, log[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	log, _ = s.Notifications(ctx)
	if !log[0].Read {
		t.Fatalf("notification not marked read")
	}
}

func TestNotificationLogCapped(t *testing.T) {
	ctx := context.Background()
	s := NewAlertService(storage.NewMemoryStore()).WithClock(testClock)

	spend := []core.Transaction{
		{ID: 1, Title: "a", Amount: core.Money{Cents: 45_000}, Category: core.CategoryGroceries, Date: core.NewDate(2024, 3, 5)},
	}
	for i := 0; i < maxNotifications+10; i++ {
		if _, err := s.CheckCaps(ctx, spend); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
	log, _ := s.Notifications(ctx)
	if len(log) != maxNotifications {
		t.Fatalf("log length %d, want %d", len(log), maxNotifications)
	}
	// Newest first: ids descend.
	if log[0].ID <= log[1].ID {
		t.Fatalf("log not newest first: %d then %d", log[0].ID, log[1].ID)
	}
}
