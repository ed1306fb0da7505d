package core

import (
	"fmt"
	"time"
)

// Date is a calendar date at UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, ErrValidation)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("date cannot be zero: %w", ErrValidation)
	}
	return nil
}

// String renders the date as "2006-01-02".
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey identifies a calendar month ("YYYY-MM" in serialized form).
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses a "YYYY-MM" month key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, ErrValidation)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month key the date falls in.
func MonthOf(d Date) MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Time.Month()}
}

func (mk MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", mk.Year, int(mk.Month))
}

func (mk MonthKey) Validate() error {
	if mk.Year == 0 || mk.Month < time.January || mk.Month > time.December {
		return fmt.Errorf("invalid month key: %w", ErrValidation)
	}
	return nil
}

// MonthsSince returns the number of whole calendar months from start to
// mk. Negative when mk precedes start.
func (mk MonthKey) MonthsSince(start MonthKey) int {
	return (mk.Year-start.Year)*12 + int(mk.Month-start.Month)
}

// Contains reports whether the date falls in this calendar month,
// matched by year and month only.
func (mk MonthKey) Contains(d Date) bool {
	return d.Year() == mk.Year && d.Time.Month() == mk.Month
}

// Next returns the following calendar month.
func (mk MonthKey) Next() MonthKey {
	if mk.Month == time.December {
		return MonthKey{Year: mk.Year + 1, Month: time.January}
	}
	return MonthKey{Year: mk.Year, Month: mk.Month + 1}
}
