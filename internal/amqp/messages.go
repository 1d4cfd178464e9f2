package amqp

import (
	"encoding/json"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
)

// LedgerEventMessage is the wire form of a ledger change. It carries the
// headline stats alongside the event so consumers never need to call back.
type LedgerEventMessage struct {
	Kind          ledger.EventKind  `json:"kind"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	BudgetCents   int64             `json:"budgetCents"`
	ExpensesCents int64             `json:"totalExpensesCents"`
	BalanceCents  int64             `json:"balanceCents"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewLedgerEventMessage(ev ledger.Event) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:          ev.Kind,
		Transaction:   ev.Transaction,
		BudgetCents:   ev.Stats.Budget.Cents,
		ExpensesCents: ev.Stats.TotalExpenses.Cents,
		BalanceCents:  ev.Stats.Balance.Cents,
		Timestamp:     time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
