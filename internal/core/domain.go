package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryHealthcare    Category = "Healthcare"
	CategoryOther         Category = "Other"
)

// Categories is the closed set of recognized expense categories, in
// presentation order. Raw input outside this set is rejected at the
// store boundary.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryBills,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealthcare,
	CategoryOther,
}

type (
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          int64    `json:"id"`
		Date        Date     `json:"date"`
		Category    Category `json:"category"`
		Amount      Money    `json:"amount"`
		Description string   `json:"description"`
	}

	// ExpenseInput is the raw, unvalidated shape an expense enters the
	// system with. Fields stay strings until validation.
	ExpenseInput struct {
		Date        string
		Category    string
		Amount      string
		Description string
	}
)

// ListOrder selects the explicit ordering of a list operation. The
// default is insertion order (id ascending); callers ask for date order
// explicitly, never implicitly.
type ListOrder string

const (
	OrderByID   ListOrder = "id"
	OrderByDate ListOrder = "date"
)

// ParseListOrder maps raw input ("", "id", "date") to a ListOrder.
func ParseListOrder(s string) (ListOrder, error) {
	switch strings.TrimSpace(s) {
	case "", string(OrderByID):
		return OrderByID, nil
	case string(OrderByDate):
		return OrderByDate, nil
	}
	return "", fmt.Errorf("unrecognized order %q", s)
}

// ErrEmptyDataset is returned when insights are requested over an empty
// snapshot. The average of zero expenses is undefined, not zero.
var ErrEmptyDataset = errors.New("no expenses recorded")

// ValidationError reports the first violated constraint on input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// NotFoundError reports a lookup for an id that is not in the store.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense %d not found", e.ID)
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a calendar date. Impossible
// dates like 2026-13-40 fail to parse.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
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

// ParseCategory matches raw text against the closed category set.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unrecognized category %q", s)
}

// CategoryNames returns the category set as plain strings, for menus and
// the /categories endpoint.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}

func (c Category) Validate() error {
	if _, err := ParseCategory(string(c)); err != nil {
		return err
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

const maxDescriptionLen = 200

// NewExpense validates raw input field by field and returns the expense
// ready for persistence (ID unassigned). The first violated constraint
// wins; the order is date, category, amount, description.
func NewExpense(in ExpenseInput) (Expense, error) {
	date, err := ParseDate(in.Date)
	if err != nil {
		return Expense{}, &ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}

	category, err := ParseCategory(in.Category)
	if err != nil {
		return Expense{}, &ValidationError{
			Field:  "category",
			Reason: "must be one of: " + strings.Join(CategoryNames(), ", "),
		}
	}

	cents, err := ParseDecimalToCents(in.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Reason: "must be a positive decimal number"}
	}

	desc := strings.TrimSpace(in.Description)
	if len(desc) > maxDescriptionLen {
		return Expense{}, &ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("too long (max %d characters)", maxDescriptionLen),
		}
	}

	return Expense{
		Date:        date,
		Category:    category,
		Amount:      Money{Cents: cents},
		Description: desc,
	}, nil
}

// Validate checks the persisted-record invariants.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}
