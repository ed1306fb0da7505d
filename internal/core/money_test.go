package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"7", 700, true},
		{".5", 50, true},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q): unexpected error %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("ParseDecimalToCents(%q): expected error", tc.in)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseDecimalToCents(%q): error %v is not a validation error", tc.in, err)
		}
	}
}

func TestDivideCents(t *testing.T) {
	cases := []struct {
		cents int64
		n     int
		want  int64
	}{
		{120000, 12, 10000}, // 1200.00 / 12 = 100.00
		{100000, 3, 33333},  // 1000.00 / 3 = 333.33 (half-up on 333.33...)
		{100, 3, 33},
		{200, 3, 67},
		{500, 0, 0},
	}
	for _, tc := range cases {
		if got := DivideCents(tc.cents, tc.n); got != tc.want {
			t.Fatalf("DivideCents(%d, %d) = %d, want %d", tc.cents, tc.n, got, tc.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{0, "0.00"},
		{5, "0.05"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero, got %v", err)
	}
}
