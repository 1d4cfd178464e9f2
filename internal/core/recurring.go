package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type Frequency string

// RecurringTemplate describes an expense that materializes on a schedule.
// Each due template spawns a flagged Transaction and advances LastProcessed.
type RecurringTemplate struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Amount        Money     `json:"amount"`
	Category      Category  `json:"category"`
	Frequency     Frequency `json:"frequency"`
	CreatedAt     time.Time `json:"createdDate"`
	LastProcessed time.Time `json:"lastProcessed"`
}

var ErrInvalidFrequency = errors.New("invalid frequency")

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (rt RecurringTemplate) Validate() error {
	if strings.TrimSpace(rt.Title) == "" {
		return ErrEmptyTitle
	}
	if len(strings.TrimSpace(rt.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if !rt.Category.Valid() {
		return ErrInvalidCategory
	}
	if !rt.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}
