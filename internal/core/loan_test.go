package core

import (
	"errors"
	"strings"
	"testing"
)

func cents(v int64) Money { return Money{Cents: v} }

func TestNewInstallmentLoan(t *testing.T) {
	l, err := NewInstallmentLoan(cents(120000), NewDate(2025, 1, 15), "car", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Type != LoanAuto {
		t.Fatalf("type = %s, want auto", l.Type)
	}
	if l.MonthlyAmount.Cents != 10000 {
		t.Fatalf("monthly amount = %d, want 10000", l.MonthlyAmount.Cents)
	}
	if l.Status != LoanActive || l.Remaining.Cents != 120000 {
		t.Fatalf("new loan not active with full remaining: %+v", l)
	}

	if _, err := NewInstallmentLoan(cents(120000), NewDate(2025, 1, 15), "car", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero installments: expected validation error, got %v", err)
	}
	if _, err := NewInstallmentLoan(cents(0), NewDate(2025, 1, 15), "car", 12); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero principal: expected validation error, got %v", err)
	}
}

func TestNewLoanManual(t *testing.T) {
	l, err := NewLoan(cents(50000), NewDate(2025, 2, 1), "lent cash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Type != LoanManual || l.Installments != 0 || !l.MonthlyAmount.IsZero() {
		t.Fatalf("manual loan carries installment data: %+v", l)
	}
	if _, err := NewLoan(cents(-100), NewDate(2025, 2, 1), "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative principal: expected validation error, got %v", err)
	}
	if _, err := NewLoan(cents(100), Date{}, "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero date: expected validation error, got %v", err)
	}
}

func TestAutoLoanFullLifecycle(t *testing.T) {
	// 1200.00 over 12 installments of 100.00
	l, err := NewInstallmentLoan(cents(120000), NewDate(2025, 1, 1), "tv", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := l.AddPayment(cents(9998), NewDate(2025, 1, 5), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("off-installment payment accepted, err = %v", err)
	}

	p, err := l.AddPayment(cents(10000), NewDate(2025, 1, 5), "first")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" || p.Amount.Cents != 10000 {
		t.Fatalf("bad payment returned: %+v", p)
	}
	if l.Remaining.Cents != 110000 || l.Status != LoanActive {
		t.Fatalf("after first payment: remaining=%d status=%s", l.Remaining.Cents, l.Status)
	}

	prev := l.Remaining.Cents
	for i := 0; i < 11; i++ {
		if _, err := l.AddPayment(cents(10000), NewDate(2025, 2+i/2, 5), ""); err != nil {
			t.Fatalf("payment %d: unexpected error: %v", i+2, err)
		}
		if l.Remaining.Cents > prev {
			t.Fatalf("remaining increased: %d -> %d", prev, l.Remaining.Cents)
		}
		prev = l.Remaining.Cents
	}

	if l.Status != LoanCompleted || l.Remaining.Cents != 0 {
		t.Fatalf("after 12 payments: remaining=%d status=%s", l.Remaining.Cents, l.Status)
	}
	if _, err := l.AddPayment(cents(10000), NewDate(2025, 12, 5), ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("payment on completed loan: expected invalid state, got %v", err)
	}
}

func TestManualLoanPaymentBounds(t *testing.T) {
	l, err := NewLoan(cents(50000), NewDate(2025, 1, 1), "cash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = l.AddPayment(cents(60000), NewDate(2025, 1, 10), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("overpayment: expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "500.00") {
		t.Fatalf("overpayment error should state the maximum payable, got %q", err)
	}
	if _, err := l.AddPayment(cents(0), NewDate(2025, 1, 10), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero payment: expected validation error, got %v", err)
	}
	if len(l.Payments) != 0 || l.Remaining.Cents != 50000 {
		t.Fatalf("rejected payments mutated the loan: %+v", l)
	}

	// Exact remaining completes the loan with remaining exactly zero.
	if _, err := l.AddPayment(cents(50000), NewDate(2025, 1, 15), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != LoanCompleted || l.Remaining.Cents != 0 {
		t.Fatalf("full payment: remaining=%d status=%s", l.Remaining.Cents, l.Status)
	}
}

func TestManualLoanToleranceClamp(t *testing.T) {
	l, _ := NewLoan(cents(10000), NewDate(2025, 1, 1), "")
	// One cent over remaining is inside the tolerance and clamps to 0.
	if _, err := l.AddPayment(cents(10001), NewDate(2025, 1, 2), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Remaining.Cents != 0 || l.Status != LoanCompleted {
		t.Fatalf("remaining=%d status=%s, want clamped completion", l.Remaining.Cents, l.Status)
	}
}

func TestAutoLoanInstallmentMessage(t *testing.T) {
	l, _ := NewInstallmentLoan(cents(120000), NewDate(2025, 1, 1), "", 12)
	_, err := l.AddPayment(cents(5000), NewDate(2025, 1, 5), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "100.00") {
		t.Fatalf("error should state the required installment amount, got %q", err)
	}
}

func TestPaymentsInMonth(t *testing.T) {
	l, _ := NewLoan(cents(100000), NewDate(2025, 1, 1), "")
	l.AddPayment(cents(10000), NewDate(2025, 1, 10), "")
	l.AddPayment(cents(20000), NewDate(2025, 2, 10), "")
	l.AddPayment(cents(5000), NewDate(2025, 2, 20), "")

	feb, _ := ParseMonthKey("2025-02")
	got := l.PaymentsInMonth(feb)
	if len(got) != 2 {
		t.Fatalf("got %d payments in February, want 2", len(got))
	}
	if l.TotalPaidInMonth(feb).Cents != 25000 {
		t.Fatalf("total paid in February = %d, want 25000", l.TotalPaidInMonth(feb).Cents)
	}
	if l.TotalPaid().Cents != 35000 {
		t.Fatalf("total paid = %d, want 35000", l.TotalPaid().Cents)
	}
}

func TestMonthlyInstallmentDue(t *testing.T) {
	l, _ := NewInstallmentLoan(cents(60000), NewDate(2025, 3, 10), "", 6)

	cases := []struct {
		month string
		want  int64
	}{
		{"2025-02", 0},     // before the schedule
		{"2025-03", 10000}, // first month
		{"2025-08", 10000}, // sixth and last month
		{"2025-09", 0},     // past the schedule
	}
	for _, tc := range cases {
		mk, _ := ParseMonthKey(tc.month)
		if got := l.MonthlyInstallmentDue(mk).Cents; got != tc.want {
			t.Fatalf("installment due %s = %d, want %d", tc.month, got, tc.want)
		}
	}

	// Completed loans never owe an installment.
	for i := 0; i < 6; i++ {
		if _, err := l.AddPayment(cents(10000), NewDate(2025, 3+i, 10), ""); err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
	}
	mk, _ := ParseMonthKey("2025-04")
	if got := l.MonthlyInstallmentDue(mk).Cents; got != 0 {
		t.Fatalf("completed loan installment due = %d, want 0", got)
	}

	// Manual loans have no schedule at all.
	m, _ := NewLoan(cents(60000), NewDate(2025, 3, 10), "")
	if got := m.MonthlyInstallmentDue(mk).Cents; got != 0 {
		t.Fatalf("manual loan installment due = %d, want 0", got)
	}
}

func TestInstallmentScheduleWalk(t *testing.T) {
	// Starts in November so the schedule crosses a year boundary.
	l, _ := NewInstallmentLoan(cents(60000), NewDate(2025, 11, 10), "", 6)

	mk := MonthOf(l.StartDate)
	for i := 0; i < 6; i++ {
		if got := l.MonthlyInstallmentDue(mk).Cents; got != 10000 {
			t.Fatalf("month %s due = %d, want 10000", mk, got)
		}
		mk = mk.Next()
	}
	if mk.String() != "2026-05" {
		t.Fatalf("schedule ended at %s, want 2026-05", mk)
	}
	if got := l.MonthlyInstallmentDue(mk).Cents; got != 0 {
		t.Fatalf("month %s is past the schedule, due = %d, want 0", mk, got)
	}
}

func TestRemainingInstallments(t *testing.T) {
	l, _ := NewInstallmentLoan(cents(120000), NewDate(2025, 1, 15), "", 12)

	cases := []struct {
		asOf Date
		want int
	}{
		{NewDate(2025, 1, 20), 12},
		{NewDate(2025, 4, 1), 9},
		{NewDate(2026, 1, 15), 0},
		{NewDate(2027, 6, 1), 0}, // floored at zero
	}
	for _, tc := range cases {
		got, ok := l.RemainingInstallments(tc.asOf)
		if !ok {
			t.Fatalf("expected a schedule for an auto loan")
		}
		if got != tc.want {
			t.Fatalf("remaining installments as of %s = %d, want %d", tc.asOf, got, tc.want)
		}
	}

	m, _ := NewLoan(cents(120000), NewDate(2025, 1, 15), "")
	if _, ok := m.RemainingInstallments(NewDate(2025, 4, 1)); ok {
		t.Fatalf("manual loan should report no schedule")
	}
}
