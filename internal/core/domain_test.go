package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Period() != (Period{Year: 2024, Month: 2}) {
		t.Fatalf("unexpected period %v", d.Period())
	}
	for _, bad := range []string{"", "2024-13-01", "01/02/2024", "2023-02-29"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateOfUsesCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2024, 6, 1, 0, 30, 0, 0, loc) // still May 31 in UTC
	if got := DateOf(at).String(); got != "2024-06-01" {
		t.Fatalf("got %s", got)
	}
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`12`), &d); err == nil {
		t.Fatalf("expected error for non-string date")
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &d); err == nil {
		t.Fatalf("expected error for unparsable date")
	}
}

func TestNewExpenseValidate(t *testing.T) {
	good := NewExpense{Amount: MustAmount("1"), Category: "Food", Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    NewExpense
		want error
	}{
		{NewExpense{Amount: MustAmount("1"), Category: " ", Date: NewDate(2025, 1, 1)}, ErrEmptyCategory},
		{NewExpense{Amount: MustAmount("1"), Category: "Food"}, ErrInvalidDate},
		{NewExpense{Amount: Amount{Decimal: MustAmount("1").Neg()}, Category: "Food", Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestNewIncomeValidate(t *testing.T) {
	if err := (NewIncome{Amount: MustAmount("0"), Source: "Salary", Date: NewDate(2025, 1, 1)}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (NewIncome{Amount: MustAmount("1"), Date: NewDate(2025, 1, 1)}).Validate(); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
}

func TestNewMonthSummaryBalance(t *testing.T) {
	s := NewMonthSummary(MustAmount("100"), MustAmount("120.50"), nil)
	if s.Balance.Cents() != -2050 {
		t.Fatalf("balance = %d cents", s.Balance.Cents())
	}
	if s.CategorySummary == nil {
		t.Fatalf("category summary should be an empty slice, not nil")
	}
}
