package core

import (
	"errors"
	"testing"
)

func TestDebtRecordSnapshotRoundTrip(t *testing.T) {
	r, _ := NewDebtRecord("Marco", "flatmate")
	auto, _ := r.AddInstallmentLoan(cents(120000), NewDate(2025, 1, 1), "tv", 12)
	manual, _ := r.AddLoan(cents(30000), NewDate(2025, 2, 1), "dinner")
	r.AddPaymentToLoan(auto.ID, cents(10000), NewDate(2025, 1, 5), "first")
	r.AddPaymentToLoan(manual.ID, cents(30000), NewDate(2025, 2, 10), "")

	restored, err := DebtRecordFromSnapshot(r.Snapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if restored.ID != r.ID || restored.Name != r.Name || restored.Details != r.Details {
		t.Fatalf("identity mismatch: %+v", restored)
	}
	if len(restored.Loans) != 2 {
		t.Fatalf("got %d loans, want 2", len(restored.Loans))
	}

	// Derived values come back recomputed, not copied.
	if restored.TotalOwed.Cents != 110000 {
		t.Fatalf("total owed = %d, want 110000", restored.TotalOwed.Cents)
	}
	ra, err := restored.Loan(auto.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ra.Type != LoanAuto || ra.MonthlyAmount.Cents != 10000 || ra.Remaining.Cents != 110000 || ra.Status != LoanActive {
		t.Fatalf("auto loan not rebuilt: %+v", ra)
	}
	if len(ra.Payments) != 1 || ra.Payments[0].Details != "first" {
		t.Fatalf("payments not restored: %+v", ra.Payments)
	}
	rm, err := restored.Loan(manual.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rm.Type != LoanManual || rm.Status != LoanCompleted || rm.Remaining.Cents != 0 {
		t.Fatalf("manual loan not rebuilt: %+v", rm)
	}
}

func TestLoanFromSnapshotValidation(t *testing.T) {
	valid := LoanSnapshot{ID: "l1", Cents: 10000, StartDate: "2025-01-01"}

	cases := []struct {
		name   string
		mutate func(s LoanSnapshot) LoanSnapshot
	}{
		{"missing id", func(s LoanSnapshot) LoanSnapshot { s.ID = ""; return s }},
		{"zero principal", func(s LoanSnapshot) LoanSnapshot { s.Cents = 0; return s }},
		{"negative installments", func(s LoanSnapshot) LoanSnapshot { s.Installments = -1; return s }},
		{"bad start date", func(s LoanSnapshot) LoanSnapshot { s.StartDate = "01/01/2025"; return s }},
		{"payment without id", func(s LoanSnapshot) LoanSnapshot {
			s.Payments = []PaymentSnapshot{{Cents: 100, Date: "2025-01-02"}}
			return s
		}},
		{"payment zero amount", func(s LoanSnapshot) LoanSnapshot {
			s.Payments = []PaymentSnapshot{{ID: "p1", Cents: 0, Date: "2025-01-02"}}
			return s
		}},
		{"payment bad date", func(s LoanSnapshot) LoanSnapshot {
			s.Payments = []PaymentSnapshot{{ID: "p1", Cents: 100, Date: "bad"}}
			return s
		}},
	}
	for _, tc := range cases {
		if _, err := LoanFromSnapshot(tc.mutate(valid)); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	if _, err := LoanFromSnapshot(valid); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}
}

func TestLoanFromSnapshotOverpaidClampsToCompleted(t *testing.T) {
	s := LoanSnapshot{
		ID:        "l1",
		Cents:     10000,
		StartDate: "2025-01-01",
		Payments: []PaymentSnapshot{
			{ID: "p1", Cents: 10001, Date: "2025-01-02"},
		},
	}
	l, err := LoanFromSnapshot(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != LoanCompleted || l.Remaining.Cents != 0 {
		t.Fatalf("remaining=%d status=%s, want clamped completion", l.Remaining.Cents, l.Status)
	}
}

func TestFixedExpenseSnapshotRoundTrip(t *testing.T) {
	f, _ := NewFixedExpense("Rent", cents(85000), 1, "landlord transfer")
	f.UpdateAmount(cents(87000))
	mar, _ := ParseMonthKey("2025-03")
	f.RegisterPayment(mar, NewDate(2025, 3, 2), Money{})

	restored, err := FixedExpenseFromSnapshot(f.Snapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.ID != f.ID || restored.Name != f.Name || restored.Amount.Cents != 87000 || restored.PaymentDay != 1 {
		t.Fatalf("expense not rebuilt: %+v", restored)
	}
	if len(restored.History) != 1 || restored.History[0].Previous.Cents != 85000 || restored.History[0].New.Cents != 87000 {
		t.Fatalf("history not restored: %+v", restored.History)
	}
	p, ok := restored.MonthPayment(mar)
	if !ok || p.Amount.Cents != 87000 || p.Date.String() != "2025-03-02" {
		t.Fatalf("payment record not restored: %+v", p)
	}
}

func TestFixedExpenseFromSnapshotValidation(t *testing.T) {
	valid := FixedExpenseSnapshot{ID: "e1", Name: "Rent", Cents: 85000, PaymentDay: 1}

	cases := []struct {
		name   string
		mutate func(s FixedExpenseSnapshot) FixedExpenseSnapshot
	}{
		{"missing id", func(s FixedExpenseSnapshot) FixedExpenseSnapshot { s.ID = ""; return s }},
		{"missing name", func(s FixedExpenseSnapshot) FixedExpenseSnapshot { s.Name = ""; return s }},
		{"zero amount", func(s FixedExpenseSnapshot) FixedExpenseSnapshot { s.Cents = 0; return s }},
		{"payment day out of range", func(s FixedExpenseSnapshot) FixedExpenseSnapshot { s.PaymentDay = 32; return s }},
		{"bad month key", func(s FixedExpenseSnapshot) FixedExpenseSnapshot {
			s.Payments = map[string]ExpensePaymentSnapshot{"03-2025": {Date: "2025-03-02", Cents: 100}}
			return s
		}},
		{"bad payment date", func(s FixedExpenseSnapshot) FixedExpenseSnapshot {
			s.Payments = map[string]ExpensePaymentSnapshot{"2025-03": {Date: "bad", Cents: 100}}
			return s
		}},
	}
	for _, tc := range cases {
		if _, err := FixedExpenseFromSnapshot(tc.mutate(valid)); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	if _, err := FixedExpenseFromSnapshot(valid); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}
}
