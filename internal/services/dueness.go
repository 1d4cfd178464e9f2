// Package services orchestrates the secondary entities on top of the ledger:
// recurring templates, savings goals and category cap alerts.
//
// Dueness checking uses the strategy pattern: each frequency has its own
// checker so new schedules can be added without touching the processor.
package services

import (
	"fmt"
	"time"

	"budgetbook/internal/core"
)

// DuenessChecker decides whether a recurring template should materialize.
type DuenessChecker interface {
	// IsDue reports whether enough time has passed since the last
	// materialization. A zero lastProcessed means never processed and is
	// always due.
	IsDue(lastProcessed, now time.Time) bool
}

// intervalChecker is due once the elapsed days reach its threshold. All four
// stock frequencies reduce to a day count.
type intervalChecker struct {
	days float64
}

func (c intervalChecker) IsDue(lastProcessed, now time.Time) bool {
	if lastProcessed.IsZero() {
		return true
	}
	return now.Sub(lastProcessed).Hours()/24 >= c.days
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   intervalChecker{days: 1},
	core.Weekly:  intervalChecker{days: 7},
	core.Monthly: intervalChecker{days: 30},
	core.Yearly:  intervalChecker{days: 365},
}

// GetDuenessChecker returns the checker for a frequency, or an error for an
// unknown one.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}
