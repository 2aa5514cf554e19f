// Package core provides the ledger domain: records, amounts and month periods.
//
// Amounts are decimals without an implied currency unit; the presentation
// layer assumes Euro.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents is the largest amount, in cents, that storage can hold exactly.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// Amount is a non-negative decimal sum of money. It is serialized as a bare
// JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmountFromCents builds an Amount from an integer number of cents.
func NewAmountFromCents(cents int64) Amount {
	return Amount{Decimal: decimal.New(cents, -2)}
}

// MustAmount parses s and panics on failure. Intended for tests and constants.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAmount converts user input into an Amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Negative values and anything that is not a plain decimal number are
// rejected with ErrInvalidAmount, amounts beyond int64 cents with
// ErrAmountTooLarge. Zero is allowed.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	a := Amount{Decimal: d}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Cents rounds the amount half-up to whole cents.
func (a Amount) Cents() int64 {
	return a.Decimal.Round(2).Shift(2).IntPart()
}

func (a Amount) Validate() error {
	if a.IsNegative() {
		return ErrInvalidAmount
	}
	if a.Decimal.Round(2).Shift(2).GreaterThan(maxCents) {
		return ErrAmountTooLarge
	}
	return nil
}

// Sub returns a - b. The result may be negative (balances).
func (a Amount) Sub(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Sub(b.Decimal)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}
