package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/analytics"
	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// maxNotifications caps the persisted log; older entries fall off the end.
const maxNotifications = 50

var ErrNotificationNotFound = errors.New("notification not found")

// defaultCaps seeds the per-category monthly allocations on first run.
var defaultCaps = map[core.Category]core.Money{
	core.CategoryGroceries:      {Cents: 50_000},
	core.CategoryTransportation: {Cents: 20_000},
	core.CategoryUtilities:      {Cents: 15_000},
	core.CategoryEntertainment:  {Cents: 10_000},
	core.CategoryHealthcare:     {Cents: 10_000},
	core.CategoryShopping:       {Cents: 15_000},
	core.CategoryDining:         {Cents: 20_000},
	core.CategoryOther:          {Cents: 10_000},
}

// Notification is one persisted alert, newest first in the stored list.
type Notification struct {
	ID        int64         `json:"id"`
	Category  core.Category `json:"category,omitempty"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdDate"`
	Read      bool          `json:"read"`
}

// AlertService watches monthly category spending against the cap map and
// keeps the notification log.
type AlertService struct {
	store storage.Store
	now   func() time.Time
}

func NewAlertService(store storage.Store) *AlertService {
	return &AlertService{store: store, now: time.Now}
}

func (s *AlertService) WithClock(now func() time.Time) *AlertService {
	s.now = now
	return s
}

// Caps returns the cap map, seeding the defaults on first access.
func (s *AlertService) Caps(ctx context.Context) (map[core.Category]core.Money, error) {
	caps := map[core.Category]core.Money{}
	found, err := s.store.Get(ctx, storage.KeyCategoryCaps, &caps)
	if err != nil {
		return nil, fmt.Errorf("load category caps: %w", err)
	}
	if !found {
		for c, m := range defaultCaps {
			caps[c] = m
		}
		if err := s.store.Set(ctx, storage.KeyCategoryCaps, caps); err != nil {
			return nil, fmt.Errorf("seed category caps: %w", err)
		}
		slog.InfoContext(ctx, "Seeded default category caps", "categories", len(caps))
	}
	return caps, nil
}

// SetCap updates one category's allocation.
func (s *AlertService) SetCap(ctx context.Context, category core.Category, limit core.Money) error {
	if !category.Valid() {
		return core.ErrInvalidCategory
	}
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	caps, err := s.Caps(ctx)
	if err != nil {
		return err
	}
	caps[category] = limit
	if err := s.store.Set(ctx, storage.KeyCategoryCaps, caps); err != nil {
		return fmt.Errorf("persist category caps: %w", err)
	}
	return nil
}

// CheckCaps compares this month's per-category spend against the caps and
// raises a notification for every category at or past 90% of its allocation.
// Raised notifications are returned and appended to the log.
func (s *AlertService) CheckCaps(ctx context.Context, txs []core.Transaction) ([]Notification, error) {
	now := s.now()
	caps, err := s.Caps(ctx)
	if err != nil {
		return nil, err
	}

	monthStart := core.StartOfMonth(now)
	var monthly []core.Transaction
	for _, tx := range txs {
		if !tx.Date.Before(monthStart.Time) && !tx.Date.After(core.DateOf(now).Time) {
			monthly = append(monthly, tx)
		}
	}
	totals := analytics.CategoryTotals(monthly)

	var raised []Notification
	for _, c := range core.Categories {
		limit, ok := caps[c]
		if !ok || limit.Cents <= 0 {
			continue
		}
		spent := totals[c]
		if float64(spent.Cents) < 0.9*float64(limit.Cents) {
			continue
		}
		raised = append(raised, Notification{
			Category: c,
			Message: fmt.Sprintf("%s spending %s has reached %.0f%% of the %s monthly allocation",
				c, spent, float64(spent.Cents)/float64(limit.Cents)*100, limit),
			CreatedAt: now,
		})
	}
	if len(raised) == 0 {
		return nil, nil
	}
	if err := s.appendNotifications(ctx, raised); err != nil {
		return nil, err
	}
	return raised, nil
}

// Notifications returns the persisted log, newest first.
func (s *AlertService) Notifications(ctx context.Context) ([]Notification, error) {
	var log []Notification
	if _, err := s.store.Get(ctx, storage.KeyNotifications, &log); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return log, nil
}

// MarkRead flags one notification as read.
func (s *AlertService) MarkRead(ctx context.Context, id int64) error {
	log, err := s.Notifications(ctx)
	if err != nil {
		return err
	}
	for i := range log {
		if log[i].ID == id {
			log[i].Read = true
			return s.persistNotifications(ctx, log)
		}
	}
	return ErrNotificationNotFound
}

func (s *AlertService) appendNotifications(ctx context.Context, raised []Notification) error {
	log, err := s.Notifications(ctx)
	if err != nil {
		return err
	}
	var maxID int64
	for _, n := range log {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	for i := range raised {
		maxID++
		raised[i].ID = maxID
	}
	// Newest first, capped.
	log = append(raised, log...)
	if len(log) > maxNotifications {
		log = log[:maxNotifications]
	}
	return s.persistNotifications(ctx, log)
}

func (s *AlertService) persistNotifications(ctx context.Context, log []Notification) error {
	if err := s.store.Set(ctx, storage.KeyNotifications, log); err != nil {
		return fmt.Errorf("persist notifications: %w", err)
	}
	return nil
}
