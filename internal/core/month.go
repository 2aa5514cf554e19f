package core

import (
	"fmt"
	"strconv"
	"time"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name for a 1-12 month, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// Period identifies a calendar month.
type Period struct {
	Year  int
	Month int // 1-12
}

// PeriodOf returns the month t falls in, in t's own location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, p.Month)
	}
	return nil
}

// Shift moves the period by delta months, rolling the year over as needed.
func (p Period) Shift(delta int) Period {
	idx := p.Year*12 + (p.Month - 1) + delta
	year := idx / 12
	month := idx % 12
	if month < 0 {
		month += 12
		year--
	}
	return Period{Year: year, Month: month + 1}
}

// After reports whether p is strictly later than other.
func (p Period) After(other Period) bool {
	if p.Year != other.Year {
		return p.Year > other.Year
	}
	return p.Month > other.Month
}

// Label renders "<FullMonthName> <Year>".
func (p Period) Label() string {
	return MonthName(p.Month) + " " + strconv.Itoa(p.Year)
}

// FirstDay returns the first calendar day of the period.
func (p Period) FirstDay() Date {
	return NewDate(p.Year, p.Month, 1)
}

// Range returns the half-open [first day, first day of next month) interval.
func (p Period) Range() (from, to Date) {
	return p.FirstDay(), p.Shift(1).FirstDay()
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
