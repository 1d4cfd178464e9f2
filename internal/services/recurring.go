package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/storage"
)

// RecurringProcessor manages recurring templates and materializes the due
// ones into flagged ledger transactions.
type RecurringProcessor struct {
	store  storage.Store
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewRecurringProcessor(store storage.Store, l *ledger.Ledger) *RecurringProcessor {
	return &RecurringProcessor{store: store, ledger: l, now: time.Now}
}

// WithClock overrides the time source for tests.
func (p *RecurringProcessor) WithClock(now func() time.Time) *RecurringProcessor {
	p.now = now
	return p
}

// Templates loads the template collection. A missing key is an empty list.
func (p *RecurringProcessor) Templates(ctx context.Context) ([]core.RecurringTemplate, error) {
	var templates []core.RecurringTemplate
	if _, err := p.store.Get(ctx, storage.KeyRecurring, &templates); err != nil {
		return nil, fmt.Errorf("load recurring templates: %w", err)
	}
	return templates, nil
}

// AddTemplate validates and appends a template. It is not materialized until
// the next ProcessDue run.
func (p *RecurringProcessor) AddTemplate(ctx context.Context, t core.RecurringTemplate) (core.RecurringTemplate, error) {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}

	templates, err := p.Templates(ctx)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	var maxID int64
	for _, existing := range templates {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	t.ID = maxID + 1
	t.CreatedAt = p.now()
	t.LastProcessed = time.Time{}
	templates = append(templates, t)

	if err := p.store.Set(ctx, storage.KeyRecurring, templates); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("persist recurring templates: %w", err)
	}
	return t, nil
}

// DeleteTemplate removes a template by id.
func (p *RecurringProcessor) DeleteTemplate(ctx context.Context, id int64) error {
	templates, err := p.Templates(ctx)
	if err != nil {
		return err
	}
	kept := templates[:0]
	found := false
	for _, t := range templates {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return core.ErrTemplateNotFound
	}
	if err := p.store.Set(ctx, storage.KeyRecurring, kept); err != nil {
		return fmt.Errorf("persist recurring templates: %w", err)
	}
	return nil
}

// ProcessDue materializes every due template as a recurring-flagged
// transaction titled "<title> (Recurring)" and advances its lastProcessed
// marker. One failing template does not stop the rest; the count of
// materialized transactions is returned.
func (p *RecurringProcessor) ProcessDue(ctx context.Context) (int, error) {
	now := p.now()
	templates, err := p.Templates(ctx)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Processing recurring templates",
		"total", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	dirty := false
	for i := range templates {
		t := &templates[i]
		checker, err := GetDuenessChecker(t.Frequency)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template with unknown frequency",
				"id", t.ID, "frequency", t.Frequency)
			continue
		}
		if !checker.IsDue(t.LastProcessed, now) {
			continue
		}

		title := t.Title + " (Recurring)"
		if _, err := p.ledger.AddRecurring(ctx, title, t.Amount, t.Category, core.DateOf(now)); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring template",
				"id", t.ID, "title", t.Title, "error", err)
			continue
		}

		t.LastProcessed = now
		dirty = true
		processed++
		slog.InfoContext(ctx, "Materialized recurring template",
			"id", t.ID, "title", t.Title, "amount_cents", t.Amount.Cents, "frequency", t.Frequency)
	}

	if dirty {
		if err := p.store.Set(ctx, storage.KeyRecurring, templates); err != nil {
			return processed, fmt.Errorf("persist recurring templates: %w", err)
		}
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed, "total_checked", len(templates))
	return processed, nil
}
