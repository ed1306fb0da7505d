// Package core implements the debt and fixed-expense accounting model:
// loans with optional installment schedules, counterparty records that
// aggregate them, recurring monthly obligations, and the month-scoped
// balance engine that summarizes all three.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents. All arithmetic in the accounting
// core happens in cents; floats only appear at the display boundary.
type Money struct {
	Cents int64
}

// ToleranceCents is the comparison tolerance for payment amounts. The
// source system compared floats with a 0.01 tolerance; with cents that
// is exactly one cent.
const ToleranceCents = 1

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Returns ErrValidation for invalid formats,
// negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount: %w", ErrValidation)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("malformed amount %q: %w", s, ErrValidation)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("malformed amount %q: %w", s, ErrValidation)
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", s, ErrValidation)
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, fmt.Errorf("amount out of range: %w", ErrValidation)
	}
	// Take first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	return cents, nil
}

// DivideCents splits cents into n equal parts with half-up rounding.
// Used to derive the fixed installment amount from a loan principal.
func DivideCents(cents int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	d := int64(n)
	return (cents + d/2) / d
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	return nil
}

// IsZero reports whether the amount is exactly zero cents.
func (m Money) IsZero() bool { return m.Cents == 0 }

// Add returns m + other.
func (m Money) Add(other Money) Money { return Money{Cents: m.Cents + other.Cents} }

// Sub returns m - other. The result may be negative; callers clamp
// where the domain requires it.
func (m Money) Sub(other Money) Money { return Money{Cents: m.Cents - other.Cents} }

// String renders the amount as a plain decimal (e.g. "123.45").
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
