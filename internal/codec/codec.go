// Package codec reads and writes the portable backup document. The wire
// format mirrors the stored keys: the budget and the id counter travel as
// strings, amounts as decimal numbers, dates as ISO 8601. Import validates
// the whole document before anything is returned; a malformed document is a
// FormatError and never produces a partial result.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
)

// FormatError reports a structural problem in an imported document. It
// carries the offending field so the surface layer can show a precise
// message.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid backup document: %s: %s", e.Field, e.Reason)
}

func formatErr(field, reason string) error {
	return &FormatError{Field: field, Reason: reason}
}

// Document is the decoded portable state, ready for Ledger.ImportAll.
type Document struct {
	Budget       core.Money
	Transactions []core.Transaction
	NextID       int64
	ExportedAt   time.Time
}

type wireDocument struct {
	BudgetRaw    *string          `json:"budget_raw"`
	LegacyBudget *json.RawMessage `json:"budget"`
	Expenses     *json.RawMessage `json:"expenses"`
	ItemID       *json.RawMessage `json:"itemID"`
	ExportDate   string           `json:"exportDate"`
}

type wireTransaction struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Amount      json.RawMessage `json:"amount"`
	Category    core.Category   `json:"category"`
	Date        string          `json:"date"`
	Timestamp   string          `json:"timestamp"`
	IsRecurring bool            `json:"isRecurring"`
}

// Export serializes the ledger state into the portable document.
func Export(budget core.Money, transactions []core.Transaction, nextID int64, now time.Time) ([]byte, error) {
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	doc := struct {
		BudgetRaw  string             `json:"budget_raw"`
		Expenses   []core.Transaction `json:"expenses"`
		ItemID     string             `json:"itemID"`
		ExportDate string             `json:"exportDate"`
	}{
		BudgetRaw:  budget.String(),
		Expenses:   transactions,
		ItemID:     strconv.FormatInt(nextID, 10),
		ExportDate: now.UTC().Format(time.RFC3339),
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return out, nil
}

// FileName returns the suggested download name, e.g.
// "budget_data_2024-03-20.json".
func FileName(now time.Time) string {
	return "budget_data_" + core.DateOf(now).String() + ".json"
}

// Import validates and decodes a portable document. Every structural rule is
// checked up front: the budget (current or legacy key) must parse as a
// non-negative number, expenses must be an array of well-formed entries with
// positive amounts and parseable dates, and ids and the counter must be
// integers. Any violation returns a FormatError and no document.
func Import(data []byte) (*Document, error) {
	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, formatErr("document", "not a JSON object")
	}

	doc := &Document{}

	switch {
	case wire.BudgetRaw != nil:
		cents, err := parseBudget(*wire.BudgetRaw)
		if err != nil {
			return nil, formatErr("budget_raw", "not a valid amount")
		}
		doc.Budget = core.Money{Cents: cents}
	case wire.LegacyBudget != nil:
		raw := strings.Trim(string(*wire.LegacyBudget), `"`)
		cents, err := parseBudget(raw)
		if err != nil {
			return nil, formatErr("budget", "not a valid amount")
		}
		doc.Budget = core.Money{Cents: cents}
	default:
		return nil, formatErr("budget_raw", "missing")
	}

	if wire.Expenses == nil {
		return nil, formatErr("expenses", "missing")
	}
	var entries []wireTransaction
	if err := json.Unmarshal(*wire.Expenses, &entries); err != nil {
		return nil, formatErr("expenses", "not an array of expense entries")
	}
	doc.Transactions = make([]core.Transaction, 0, len(entries))
	for i, e := range entries {
		tx, err := decodeEntry(i, e)
		if err != nil {
			return nil, err
		}
		doc.Transactions = append(doc.Transactions, tx)
	}

	if wire.ItemID != nil {
		id, err := parseIntField(*wire.ItemID)
		if err != nil || id < 1 {
			return nil, formatErr("itemID", "not a positive integer")
		}
		doc.NextID = id
	} else {
		doc.NextID = 1
	}

	if wire.ExportDate != "" {
		if t, err := time.Parse(time.RFC3339, wire.ExportDate); err == nil {
			doc.ExportedAt = t
		}
	}
	return doc, nil
}

func decodeEntry(i int, e wireTransaction) (core.Transaction, error) {
	field := func(name string) string { return fmt.Sprintf("expenses[%d].%s", i, name) }

	id, err := parseIntField(e.ID)
	if err != nil || id < 1 {
		return core.Transaction{}, formatErr(field("id"), "not a positive integer")
	}
	if strings.TrimSpace(e.Title) == "" {
		return core.Transaction{}, formatErr(field("title"), "missing")
	}

	var amount core.Money
	if len(e.Amount) == 0 {
		return core.Transaction{}, formatErr(field("amount"), "missing")
	}
	if err := json.Unmarshal(e.Amount, &amount); err != nil {
		return core.Transaction{}, formatErr(field("amount"), "not a number")
	}
	if amount.Cents <= 0 {
		return core.Transaction{}, formatErr(field("amount"), "must be positive")
	}

	date, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Transaction{}, formatErr(field("date"), "not a date")
	}

	tx := core.Transaction{
		ID:          id,
		Title:       strings.TrimSpace(e.Title),
		Amount:      amount,
		Category:    e.Category.Normalize(),
		Date:        date,
		IsRecurring: e.IsRecurring,
	}
	if e.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			tx.Timestamp = t
		}
	}
	return tx, nil
}

// parseBudget accepts a decimal string; zero is valid here, unlike
// transaction amounts.
func parseBudget(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "0.00" || s == "" {
		return 0, nil
	}
	return core.ParseDecimalToCents(s)
}

// parseIntField accepts a JSON number or a string-encoded integer.
func parseIntField(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return strconv.ParseInt(s, 10, 64)
}
