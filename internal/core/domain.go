package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	CategoryGroceries      Category = "groceries"
	CategoryTransportation Category = "transportation"
	CategoryUtilities      Category = "utilities"
	CategoryEntertainment  Category = "entertainment"
	CategoryHealthcare     Category = "healthcare"
	CategoryShopping       Category = "shopping"
	CategoryDining         Category = "dining"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategoryFitness        Category = "fitness"
	CategoryOther          Category = "other"
)

const MaxTitleLength = 100

type (
	Category string

	// Transaction is one recorded expense entry in the ledger.
	Transaction struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Amount      Money     `json:"amount"`
		Category    Category  `json:"category"`
		Date        Date      `json:"date"`
		Timestamp   time.Time `json:"timestamp"`
		IsRecurring bool      `json:"isRecurring,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("empty title")
	ErrTitleTooLong    = errors.New("title too long")
	ErrInvalidCategory = errors.New("invalid category")
	ErrDateOutOfRange  = errors.New("date out of range")
	ErrNegativeBudget  = errors.New("budget cannot be negative")
)

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryGroceries, CategoryTransportation, CategoryUtilities,
	CategoryEntertainment, CategoryHealthcare, CategoryShopping,
	CategoryDining, CategoryEducation, CategoryTravel,
	CategoryFitness, CategoryOther,
}

var categorySet = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := categorySet[c]
	return ok
}

// Normalize maps unknown or missing categories to "other". Aggregation always
// works on normalized categories; stored values keep whatever was supplied.
func (c Category) Normalize() Category {
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// Validate checks the business rules for an interactively created transaction.
// The date window check lives in Date.WithinWindow because imported data is
// allowed to bypass it.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	// Length is counted in runes; multibyte titles are not penalized.
	if utf8.RuneCountInString(strings.TrimSpace(t.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}
