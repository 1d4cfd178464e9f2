// Package storage provides the persistent key-value store backing the
// ledger. Values are opaque JSON blobs keyed by name; the ledger is the only
// writer and treats the store as its durable mirror.
package storage

import (
	"context"
	"errors"
)

// Keys used by the application. The names are part of the portable data
// format and must not change.
const (
	KeyBudget        = "budget_raw"
	KeyExpenses      = "expenses"
	KeyNextID        = "itemID"
	KeyRecurring     = "recurringExpenses"
	KeySavingsGoals  = "savingsGoals"
	KeyCategoryCaps  = "budgetCategories"
	KeyNotifications = "notifications"
)

// ErrStorageFull is returned when a write fails because the backing store is
// out of capacity. The triggering operation's in-memory state has already
// changed; callers must surface the stale durable copy, not swallow it.
var ErrStorageFull = errors.New("storage full")

// Store is a persistent mapping from string keys to JSON-serializable
// values.
type Store interface {
	// Get decodes the value stored under key into 'into'. It returns false
	// with a nil error when the key is absent, and a non-nil error when the
	// stored value cannot be decoded (corruption).
	Get(ctx context.Context, key string, into any) (bool, error)

	// Set encodes value as JSON and writes it under key. A failed write is
	// surfaced, never dropped.
	Set(ctx context.Context, key string, value any) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
