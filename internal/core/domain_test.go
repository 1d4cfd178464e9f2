package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Title:    "coffee",
		Amount:   Money{Cents: 350},
		Category: CategoryDining,
		Date:     NewDate(2025, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := ""
	for i := 0; i < MaxTitleLength+1; i++ {
		long += "a"
	}

	bads := []Transaction{
		{Title: "", Amount: Money{Cents: 100}, Category: CategoryOther, Date: NewDate(2025, 1, 1)},
		{Title: "   ", Amount: Money{Cents: 100}, Category: CategoryOther, Date: NewDate(2025, 1, 1)},
		{Title: long, Amount: Money{Cents: 100}, Category: CategoryOther, Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: Money{Cents: 0}, Category: CategoryOther, Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: Money{Cents: -5}, Category: CategoryOther, Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: Money{Cents: 100}, Category: "snacks", Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: Money{Cents: 100}, Category: CategoryOther},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTitleLengthCountsRunes(t *testing.T) {
	// 60 multibyte runes are well inside the limit even though the byte
	// length exceeds it.
	title := ""
	for i := 0; i < 60; i++ {
		title += "è"
	}
	tx := Transaction{Title: title, Amount: Money{Cents: 100}, Category: CategoryOther, Date: NewDate(2025, 1, 1)}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := ""
	for i := 0; i < MaxTitleLength+1; i++ {
		long += "è"
	}
	tx.Title = long
	if err := tx.Validate(); err != ErrTitleTooLong {
		t.Fatalf("expected ErrTitleTooLong, got %v", err)
	}
}

func TestCategoryNormalize(t *testing.T) {
	cases := []struct {
		in   Category
		want Category
	}{
		{CategoryGroceries, CategoryGroceries},
		{"", CategoryOther},
		{"snacks", CategoryOther},
		{CategoryOther, CategoryOther},
	}
	for i, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("case %d: got %q want %q", i, got, tc.want)
		}
	}
}

func TestDateWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 6, 15), true},
		{NewDate(2024, 6, 15), true},
		{NewDate(2026, 6, 15), true},
		{NewDate(2024, 6, 14), false},
		{NewDate(2026, 6, 16), false},
	}
	for i, tc := range cases {
		if got := tc.d.WithinWindow(now); got != tc.ok {
			t.Fatalf("case %d (%s): got %v want %v", i, tc.d, got, tc.ok)
		}
	}
}

func TestStartOfWeekIsSunday(t *testing.T) {
	// 2025-06-18 is a Wednesday; the week started Sunday the 15th.
	now := time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	if got := StartOfWeek(now); !got.SameDay(NewDate(2025, 6, 15)) {
		t.Fatalf("got %s, want 2025-06-15", got)
	}
	// A Sunday is its own week start.
	sun := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	if got := StartOfWeek(sun); !got.SameDay(NewDate(2025, 6, 15)) {
		t.Fatalf("got %s, want 2025-06-15", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !d.SameDay(NewDate(2024, 1, 5)) {
		t.Fatalf("got %s", d)
	}

	// RFC 3339 timestamps keep only the date part.
	d, err = ParseDate("2024-01-05T14:30:00Z")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !d.SameDay(NewDate(2024, 1, 5)) {
		t.Fatalf("got %s", d)
	}

	if _, err := ParseDate("not-a-date"); err == nil {
		t.Fatalf("expected error")
	}
}
