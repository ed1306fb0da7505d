package core

import (
	"errors"
	"testing"
)

func TestNewFixedExpense(t *testing.T) {
	f, err := NewFixedExpense("Rent", cents(85000), 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID == "" || f.Amount.Cents != 85000 || f.PaymentDay != 1 {
		t.Fatalf("bad expense: %+v", f)
	}

	cases := []struct {
		name   string
		amount int64
		day    int
	}{
		{"", 85000, 1},
		{"Rent", 0, 1},
		{"Rent", -100, 1},
		{"Rent", 85000, 0},
		{"Rent", 85000, 32},
	}
	for _, tc := range cases {
		if _, err := NewFixedExpense(tc.name, cents(tc.amount), tc.day, ""); !errors.Is(err, ErrValidation) {
			t.Fatalf("NewFixedExpense(%q, %d, %d): expected validation error, got %v", tc.name, tc.amount, tc.day, err)
		}
	}
}

func TestUpdateAmountHistory(t *testing.T) {
	f, _ := NewFixedExpense("Internet", cents(2999), 15, "")

	if err := f.UpdateAmount(cents(3499)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Amount.Cents != 3499 {
		t.Fatalf("amount = %d, want 3499", f.Amount.Cents)
	}
	if len(f.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(f.History))
	}
	h := f.History[0]
	if h.Previous.Cents != 2999 || h.New.Cents != 3499 || h.ChangedAt.IsZero() {
		t.Fatalf("bad history entry: %+v", h)
	}

	if err := f.UpdateAmount(cents(0)); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero amount: expected validation error, got %v", err)
	}
	if err := f.UpdateAmount(cents(-100)); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative amount: expected validation error, got %v", err)
	}
	if f.Amount.Cents != 3499 || len(f.History) != 1 {
		t.Fatalf("rejected update mutated the expense: %+v", f)
	}
}

func TestRegisterPaymentUpsert(t *testing.T) {
	f, _ := NewFixedExpense("Rent", cents(85000), 1, "")
	mar, _ := ParseMonthKey("2025-03")

	if f.IsMonthPaid(mar) {
		t.Fatalf("fresh expense should have no paid months")
	}

	p, err := f.RegisterPayment(mar, NewDate(2025, 3, 2), Money{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Zero amount defaults to the current expense amount.
	if p.Amount.Cents != 85000 {
		t.Fatalf("defaulted amount = %d, want 85000", p.Amount.Cents)
	}
	if !f.IsMonthPaid(mar) {
		t.Fatalf("month should be paid after registering")
	}

	// Registering the same month again overwrites, never duplicates.
	if _, err := f.RegisterPayment(mar, NewDate(2025, 3, 5), cents(86000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Payments) != 1 {
		t.Fatalf("got %d payment records, want 1", len(f.Payments))
	}
	got, ok := f.MonthPayment(mar)
	if !ok || got.Amount.Cents != 86000 || got.Date.String() != "2025-03-05" {
		t.Fatalf("bad overwritten record: %+v", got)
	}

	apr, _ := ParseMonthKey("2025-04")
	if f.IsMonthPaid(apr) {
		t.Fatalf("other months must stay unpaid")
	}
}

func TestRegisterPaymentValidation(t *testing.T) {
	f, _ := NewFixedExpense("Rent", cents(85000), 1, "")
	mar, _ := ParseMonthKey("2025-03")

	if _, err := f.RegisterPayment(MonthKey{}, NewDate(2025, 3, 2), Money{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero month: expected validation error, got %v", err)
	}
	if _, err := f.RegisterPayment(mar, Date{}, Money{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero date: expected validation error, got %v", err)
	}
	if _, err := f.RegisterPayment(mar, NewDate(2025, 3, 2), cents(-50)); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative amount: expected validation error, got %v", err)
	}
	if len(f.Payments) != 0 {
		t.Fatalf("rejected registrations left records behind: %+v", f.Payments)
	}
}

func TestAmountChangeKeepsPastMonths(t *testing.T) {
	f, _ := NewFixedExpense("Gym", cents(4000), 10, "")
	feb, _ := ParseMonthKey("2025-02")
	if _, err := f.RegisterPayment(feb, NewDate(2025, 2, 10), Money{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.UpdateAmount(cents(4500)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := f.MonthPayment(feb)
	if got.Amount.Cents != 4000 {
		t.Fatalf("past month amount = %d, want the amount at registration time 4000", got.Amount.Cents)
	}
}
