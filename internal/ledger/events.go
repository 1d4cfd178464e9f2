package ledger

import "budgetbook/internal/core"

const (
	EventBudgetChanged      EventKind = "budget.changed"
	EventTransactionAdded   EventKind = "transaction.added"
	EventTransactionUpdated EventKind = "transaction.updated"
	EventTransactionDeleted EventKind = "transaction.deleted"
	EventImported           EventKind = "ledger.imported"
	EventCleared            EventKind = "ledger.cleared"
	EventStateReset         EventKind = "ledger.state_reset"
)

type EventKind string

// Event describes one ledger change. Transaction is set for the
// transaction.* kinds; Message carries the affected key for state resets.
type Event struct {
	Kind        EventKind
	Transaction *core.Transaction
	Stats       Stats
	Message     string
}

// Listener receives change events synchronously after each mutation.
// Rendering, transient notifications and outbound publishing all hang off
// this interface; calls are fire-and-forget and must not block.
type Listener interface {
	LedgerChanged(Event)
}

// NopListener is the default when no collaborator is injected.
type NopListener struct{}

func (NopListener) LedgerChanged(Event) {}

// MultiListener fans one event out to several listeners in order.
type MultiListener []Listener

func (m MultiListener) LedgerChanged(ev Event) {
	for _, l := range m {
		l.LedgerChanged(ev)
	}
}
