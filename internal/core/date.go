package core

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date with no time-of-day semantics. It is stored at
// midnight UTC so comparisons stay independent of the wall clock.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate accepts "2006-01-02" and full RFC 3339 timestamps, keeping only
// the calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

// WithinWindow reports whether the date falls within one calendar year of
// now, either direction. Interactive creation enforces this; imports bypass.
func (d Date) WithinWindow(now time.Time) bool {
	lo := DateOf(now.AddDate(-1, 0, 0))
	hi := DateOf(now.AddDate(1, 0, 0))
	return !d.Before(lo.Time) && !d.After(hi.Time)
}

// StartOfWeek returns the most recent Sunday (inclusive) for now's date.
func StartOfWeek(now time.Time) Date {
	d := DateOf(now)
	return Date{Time: d.AddDate(0, 0, -int(d.Weekday()))}
}

// StartOfMonth returns day 1 of now's calendar month.
func StartOfMonth(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), 1)
}

// MonthsBack returns now's date shifted back by n calendar months.
func MonthsBack(now time.Time, n int) Date {
	d := DateOf(now)
	return Date{Time: d.AddDate(0, -n, 0)}
}

// DaysBack returns now's date shifted back by n days.
func DaysBack(now time.Time, n int) Date {
	d := DateOf(now)
	return Date{Time: d.AddDate(0, 0, -n)}
}

// MonthKey identifies a calendar month for grouping, e.g. "2024-01".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}
