// Package ledger owns the budget scalar and the ordered transaction
// collection. It is the single in-memory source of truth; the key-value
// store is its durable mirror, written through before every mutating call
// returns.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// Stats is the derived headline view of the ledger.
type Stats struct {
	Budget        core.Money `json:"budget"`
	TotalExpenses core.Money `json:"totalExpenses"`
	Balance       core.Money `json:"balance"`
	Percentage    float64    `json:"percentage"`
}

// Patch carries the fields of a best-effort update. Nil fields are left
// untouched. Merged fields are not re-validated; callers validate before
// calling, mirroring the permissive update semantics of the data format.
type Patch struct {
	Title    *string
	Amount   *core.Money
	Category *core.Category
	Date     *core.Date
}

type Ledger struct {
	mu       sync.Mutex
	store    storage.Store
	listener Listener
	now      func() time.Time

	budget       core.Money
	transactions []core.Transaction
	nextID       int64
	revision     uint64
}

type Option func(*Ledger)

// WithListener injects the optional change listener. The ledger never probes
// its environment; collaborators are handed in at construction.
func WithListener(l Listener) Option {
	return func(ld *Ledger) {
		if l != nil {
			ld.listener = l
		}
	}
}

// WithClock overrides the time source. Tests use this to pin "today".
func WithClock(now func() time.Time) Option {
	return func(ld *Ledger) { ld.now = now }
}

// Open loads budget, transactions and the id counter from the store. A
// missing or unparseable key is treated as "no data": the affected slice
// resets to its default, the recovery is logged and signalled through the
// listener, and the ledger stays usable. Open never fails.
func Open(ctx context.Context, store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		listener: NopListener{},
		now:      time.Now,
		nextID:   1,
	}
	for _, opt := range opts {
		opt(l)
	}

	if found, err := store.Get(ctx, storage.KeyBudget, &l.budget); err != nil {
		slog.WarnContext(ctx, "Budget unreadable, resetting to zero", "key", storage.KeyBudget, "error", err)
		l.budget = core.Money{}
		l.listener.LedgerChanged(Event{Kind: EventStateReset, Message: storage.KeyBudget})
	} else if !found {
		l.budget = core.Money{}
	}

	if found, err := store.Get(ctx, storage.KeyExpenses, &l.transactions); err != nil {
		slog.WarnContext(ctx, "Transactions unreadable, starting empty", "key", storage.KeyExpenses, "error", err)
		l.transactions = nil
		l.listener.LedgerChanged(Event{Kind: EventStateReset, Message: storage.KeyExpenses})
	} else if !found {
		l.transactions = nil
	}

	var counter flexInt
	if found, err := store.Get(ctx, storage.KeyNextID, &counter); err != nil || !found {
		if err != nil {
			slog.WarnContext(ctx, "Id counter unreadable, deriving from transactions", "key", storage.KeyNextID, "error", err)
		}
		l.nextID = maxID(l.transactions) + 1
	} else {
		l.nextID = int64(counter)
	}
	// Externally loaded data may carry ids at or past the counter.
	if derived := maxID(l.transactions) + 1; l.nextID < derived {
		l.nextID = derived
	}

	slog.InfoContext(ctx, "Ledger loaded",
		"transactions", len(l.transactions),
		"budget_cents", l.budget.Cents,
		"next_id", l.nextID)
	return l
}

// SetBudget replaces the budget scalar. The amount must be non-negative; no
// rounding is applied at this layer.
func (l *Ledger) SetBudget(ctx context.Context, budget core.Money) error {
	if budget.Cents < 0 {
		return core.ErrNegativeBudget
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.budget = budget
	l.revision++
	if err := l.store.Set(ctx, storage.KeyBudget, l.budget); err != nil {
		return fmt.Errorf("persist budget: %w", err)
	}
	l.notify(Event{Kind: EventBudgetChanged, Stats: l.stats()})
	return nil
}

// AddTransaction validates the input, assigns a fresh id, appends and
// persists. A zero date defaults to today; interactive dates must fall
// within one calendar year of now.
func (l *Ledger) AddTransaction(ctx context.Context, title string, amount core.Money, category core.Category, date core.Date) (core.Transaction, error) {
	now := l.now()
	if date.IsZero() {
		date = core.DateOf(now)
	}
	if !date.WithinWindow(now) {
		return core.Transaction{}, core.ErrDateOutOfRange
	}
	return l.append(ctx, title, amount, category, date, false)
}

// AddRecurring appends a transaction materialized from a recurring template.
// The date window check does not apply; the flag marks the provenance.
func (l *Ledger) AddRecurring(ctx context.Context, title string, amount core.Money, category core.Category, date core.Date) (core.Transaction, error) {
	if date.IsZero() {
		date = core.DateOf(l.now())
	}
	return l.append(ctx, title, amount, category, date, true)
}

func (l *Ledger) append(ctx context.Context, title string, amount core.Money, category core.Category, date core.Date, recurring bool) (core.Transaction, error) {
	tx := core.Transaction{
		Title:       strings.TrimSpace(title),
		Amount:      amount,
		Category:    category,
		Date:        date,
		Timestamp:   l.now(),
		IsRecurring: recurring,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx.ID = l.nextID
	l.nextID++
	l.transactions = append(l.transactions, tx)
	l.revision++

	if err := l.persistTransactions(ctx); err != nil {
		return tx, err
	}
	l.notify(Event{Kind: EventTransactionAdded, Transaction: &tx, Stats: l.stats()})
	return tx, nil
}

// EditTransaction shallow-merges patch onto the matching record. An unknown
// id is a documented no-op, not an error: in a single-writer session the
// case cannot occur without an external race, and raising would burden every
// caller.
func (l *Ledger) EditTransaction(ctx context.Context, id int64, patch Patch) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		slog.DebugContext(ctx, "Edit of unknown transaction ignored", "id", id)
		return nil
	}

	tx := &l.transactions[idx]
	if patch.Title != nil {
		tx.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	l.revision++

	if err := l.persistTransactions(ctx); err != nil {
		return err
	}
	updated := *tx
	l.notify(Event{Kind: EventTransactionUpdated, Transaction: &updated, Stats: l.stats()})
	return nil
}

// DeleteTransaction removes the matching record. Unknown ids are a no-op;
// the operation is idempotent.
func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.transactions[:0]
	removed := false
	for _, tx := range l.transactions {
		if tx.ID == id {
			removed = true
			continue
		}
		kept = append(kept, tx)
	}
	if !removed {
		slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
		return nil
	}
	l.transactions = kept
	l.revision++

	if err := l.persistTransactions(ctx); err != nil {
		return err
	}
	l.notify(Event{Kind: EventTransactionDeleted, Stats: l.stats()})
	return nil
}

// ImportAll atomically replaces budget, transactions and the id counter.
// Callers decode and validate the document first (see the codec package);
// by the time this runs the replacement is all-or-nothing.
func (l *Ledger) ImportAll(ctx context.Context, budget core.Money, transactions []core.Transaction, nextID int64) error {
	if budget.Cents < 0 {
		return core.ErrNegativeBudget
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.budget = budget
	l.transactions = append([]core.Transaction(nil), transactions...)
	if derived := maxID(l.transactions) + 1; nextID < derived {
		nextID = derived
	}
	l.nextID = nextID
	l.revision++

	if err := l.persistAll(ctx); err != nil {
		return err
	}
	l.notify(Event{Kind: EventImported, Stats: l.stats()})
	return nil
}

// ClearAll empties the ledger: no transactions, zero budget, counter back
// to 1.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.budget = core.Money{}
	l.transactions = nil
	l.nextID = 1
	l.revision++

	if err := l.persistAll(ctx); err != nil {
		return err
	}
	l.notify(Event{Kind: EventCleared, Stats: l.stats()})
	return nil
}

// Stats derives the headline figures. Pure read.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats()
}

func (l *Ledger) stats() Stats {
	var total int64
	for _, tx := range l.transactions {
		total += tx.Amount.Cents
	}
	s := Stats{
		Budget:        l.budget,
		TotalExpenses: core.Money{Cents: total},
		Balance:       core.Money{Cents: l.budget.Cents - total},
	}
	if l.budget.Cents > 0 {
		s.Percentage = float64(total) / float64(l.budget.Cents) * 100
	}
	return s
}

// Transactions returns a copy of the collection in insertion order.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Transaction(nil), l.transactions...)
}

// Budget returns the budget scalar.
func (l *Ledger) Budget() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budget
}

// NextID exposes the id counter for export.
func (l *Ledger) NextID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}

// Revision increments on every mutation. Read-side caches key on it.
func (l *Ledger) Revision() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revision
}

func (l *Ledger) persistTransactions(ctx context.Context) error {
	if err := l.store.Set(ctx, storage.KeyExpenses, l.transactions); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	if err := l.store.Set(ctx, storage.KeyNextID, l.nextID); err != nil {
		return fmt.Errorf("persist id counter: %w", err)
	}
	return nil
}

func (l *Ledger) persistAll(ctx context.Context) error {
	if err := l.store.Set(ctx, storage.KeyBudget, l.budget); err != nil {
		return fmt.Errorf("persist budget: %w", err)
	}
	return l.persistTransactions(ctx)
}

func (l *Ledger) notify(ev Event) {
	l.listener.LedgerChanged(ev)
}

func maxID(txs []core.Transaction) int64 {
	var max int64
	for _, tx := range txs {
		if tx.ID > max {
			max = tx.ID
		}
	}
	return max
}

// flexInt decodes a JSON number or a string-encoded integer. The portable
// format writes the id counter as a string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	var v int64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return fmt.Errorf("parse counter %q: %w", s, err)
	}
	*f = flexInt(v)
	return nil
}
