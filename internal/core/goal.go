package core

import (
	"errors"
	"strings"
	"time"
)

// SavingsGoal tracks progress toward a savings target. Goals live in their
// own collection and are mutated by explicit contributions, never by the
// ledger itself.
type SavingsGoal struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  Money     `json:"targetAmount"`
	CurrentAmount Money     `json:"currentAmount"`
	Deadline      Date      `json:"deadline"`
	Category      Category  `json:"category"`
	CreatedAt     time.Time `json:"createdDate"`
	IsCompleted   bool      `json:"isCompleted"`
}

var (
	ErrEmptyGoalName    = errors.New("empty goal name")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalCompleted    = errors.New("goal already completed")
	ErrTemplateNotFound = errors.New("recurring template not found")
)

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Progress returns completion as a percentage, capped at 100.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	p := float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
	if p > 100 {
		p = 100
	}
	return p
}
