package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date format used on the wire and in storage.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// Expense is an expense record as owned by the backend.
	Expense struct {
		ID          int64  `json:"id"`
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}

	// Income is an income record as owned by the backend.
	Income struct {
		ID          int64  `json:"id"`
		Amount      Amount `json:"amount"`
		Source      string `json:"source"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}

	// NewExpense is the create payload for an expense.
	NewExpense struct {
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}

	// NewIncome is the create payload for an income record.
	NewIncome struct {
		Amount      Amount `json:"amount"`
		Source      string `json:"source"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptySource   = errors.New("empty source")
	ErrNotFound      = errors.New("record not found")

	// ErrAmountTooLarge marks amounts whose cents do not fit an int64.
	ErrAmountTooLarge = fmt.Errorf("%w: too large", ErrInvalidAmount)
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Period returns the year/month the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: int(d.Month())}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e NewExpense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return e.Date.Validate()
}

func (i NewIncome) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	return i.Date.Validate()
}
