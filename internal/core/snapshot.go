package core

import (
	"fmt"
	"time"
)

// Plain-data projections of the accounting entities. These are the
// persistence and wire form: ids, fields and nested collections only.
// Reconstruction recomputes derived values (loan remaining and status,
// record total owed) instead of trusting what was persisted, so a
// corrupted or stale snapshot cannot smuggle in a wrong balance.

type PaymentSnapshot struct {
	ID      string `json:"id"`
	Cents   int64  `json:"cents"`
	Date    string `json:"date"`
	Details string `json:"details,omitempty"`
}

type LoanSnapshot struct {
	ID           string            `json:"id"`
	Cents        int64             `json:"cents"`
	StartDate    string            `json:"start_date"`
	Description  string            `json:"description,omitempty"`
	Installments int               `json:"installments,omitempty"`
	Payments     []PaymentSnapshot `json:"payments,omitempty"`
}

type DebtRecordSnapshot struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Details string         `json:"details,omitempty"`
	Loans   []LoanSnapshot `json:"loans,omitempty"`
}

type AmountChangeSnapshot struct {
	PreviousCents int64  `json:"previous_cents"`
	NewCents      int64  `json:"new_cents"`
	ChangedAt     string `json:"changed_at"`
}

type ExpensePaymentSnapshot struct {
	Date  string `json:"date"`
	Cents int64  `json:"cents"`
}

type FixedExpenseSnapshot struct {
	ID         string                            `json:"id"`
	Name       string                            `json:"name"`
	Cents      int64                             `json:"cents"`
	PaymentDay int                               `json:"payment_day"`
	Details    string                            `json:"details,omitempty"`
	History    []AmountChangeSnapshot            `json:"history,omitempty"`
	Payments   map[string]ExpensePaymentSnapshot `json:"payments,omitempty"`
}

// StateSnapshot is the whole-tree projection exchanged with the
// persistence collaborator.
type StateSnapshot struct {
	Debtors       []DebtRecordSnapshot   `json:"debtors"`
	Creditors     []DebtRecordSnapshot   `json:"creditors"`
	FixedExpenses []FixedExpenseSnapshot `json:"fixed_expenses"`
}

// Snapshot projects the loan into plain data.
func (l *Loan) Snapshot() LoanSnapshot {
	s := LoanSnapshot{
		ID:           l.ID,
		Cents:        l.Principal.Cents,
		StartDate:    l.StartDate.String(),
		Description:  l.Description,
		Installments: l.Installments,
	}
	for _, p := range l.Payments {
		s.Payments = append(s.Payments, PaymentSnapshot{
			ID:      p.ID,
			Cents:   p.Amount.Cents,
			Date:    p.Date.String(),
			Details: p.Details,
		})
	}
	return s
}

// LoanFromSnapshot rebuilds a loan. Remaining balance, status, type and
// monthly amount are all recomputed from principal, installments and
// the payment history.
func LoanFromSnapshot(s LoanSnapshot) (*Loan, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("loan snapshot missing id: %w", ErrValidation)
	}
	if s.Cents <= 0 {
		return nil, fmt.Errorf("loan %s has non-positive principal: %w", s.ID, ErrValidation)
	}
	if s.Installments < 0 {
		return nil, fmt.Errorf("loan %s has negative installment count: %w", s.ID, ErrValidation)
	}
	start, err := ParseDate(s.StartDate)
	if err != nil {
		return nil, fmt.Errorf("loan %s start date: %w", s.ID, err)
	}

	l := &Loan{
		ID:          s.ID,
		Principal:   Money{Cents: s.Cents},
		StartDate:   start,
		Description: s.Description,
		Remaining:   Money{Cents: s.Cents},
		Status:      LoanActive,
		Type:        LoanManual,
	}
	if s.Installments > 0 {
		l.Installments = s.Installments
		l.MonthlyAmount = Money{Cents: DivideCents(s.Cents, s.Installments)}
		l.Type = LoanAuto
	}
	for _, ps := range s.Payments {
		if ps.ID == "" {
			return nil, fmt.Errorf("loan %s has a payment without id: %w", s.ID, ErrValidation)
		}
		if ps.Cents <= 0 {
			return nil, fmt.Errorf("loan %s payment %s has non-positive amount: %w", s.ID, ps.ID, ErrValidation)
		}
		date, err := ParseDate(ps.Date)
		if err != nil {
			return nil, fmt.Errorf("loan %s payment %s date: %w", s.ID, ps.ID, err)
		}
		l.Payments = append(l.Payments, Payment{
			ID:      ps.ID,
			Amount:  Money{Cents: ps.Cents},
			Date:    date,
			Details: ps.Details,
		})
		l.Remaining = l.Remaining.Sub(Money{Cents: ps.Cents})
	}
	if l.Remaining.Cents <= 0 {
		l.Status = LoanCompleted
		l.Remaining = Money{}
	}
	return l, nil
}

// Snapshot projects the record and its loans into plain data.
func (r *DebtRecord) Snapshot() DebtRecordSnapshot {
	s := DebtRecordSnapshot{
		ID:      r.ID,
		Name:    r.Name,
		Details: r.Details,
	}
	for _, l := range r.Loans {
		s.Loans = append(s.Loans, l.Snapshot())
	}
	return s
}

// DebtRecordFromSnapshot rebuilds a record and recomputes its total
// owed from the restored loans.
func DebtRecordFromSnapshot(s DebtRecordSnapshot) (*DebtRecord, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("record snapshot missing id: %w", ErrValidation)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("record %s missing name: %w", s.ID, ErrValidation)
	}
	r := &DebtRecord{
		ID:      s.ID,
		Name:    s.Name,
		Details: s.Details,
	}
	for _, ls := range s.Loans {
		l, err := LoanFromSnapshot(ls)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", s.ID, err)
		}
		r.Loans = append(r.Loans, l)
	}
	r.UpdateTotalOwed()
	return r, nil
}

// Snapshot projects the fixed expense into plain data. Month keys
// become "YYYY-MM" strings.
func (f *FixedExpense) Snapshot() FixedExpenseSnapshot {
	s := FixedExpenseSnapshot{
		ID:         f.ID,
		Name:       f.Name,
		Cents:      f.Amount.Cents,
		PaymentDay: f.PaymentDay,
		Details:    f.Details,
	}
	for _, h := range f.History {
		s.History = append(s.History, AmountChangeSnapshot{
			PreviousCents: h.Previous.Cents,
			NewCents:      h.New.Cents,
			ChangedAt:     h.ChangedAt.Format(time.RFC3339),
		})
	}
	if len(f.Payments) > 0 {
		s.Payments = make(map[string]ExpensePaymentSnapshot, len(f.Payments))
		for mk, p := range f.Payments {
			s.Payments[mk.String()] = ExpensePaymentSnapshot{
				Date:  p.Date.String(),
				Cents: p.Amount.Cents,
			}
		}
	}
	return s
}

// FixedExpenseFromSnapshot rebuilds a fixed expense, validating month
// keys and dates of the per-month records.
func FixedExpenseFromSnapshot(s FixedExpenseSnapshot) (*FixedExpense, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("expense snapshot missing id: %w", ErrValidation)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("expense %s missing name: %w", s.ID, ErrValidation)
	}
	if s.Cents <= 0 {
		return nil, fmt.Errorf("expense %s has non-positive amount: %w", s.ID, ErrValidation)
	}
	if s.PaymentDay < 1 || s.PaymentDay > 31 {
		return nil, fmt.Errorf("expense %s has invalid payment day %d: %w", s.ID, s.PaymentDay, ErrValidation)
	}
	f := &FixedExpense{
		ID:         s.ID,
		Name:       s.Name,
		Amount:     Money{Cents: s.Cents},
		PaymentDay: s.PaymentDay,
		Details:    s.Details,
		Payments:   make(map[MonthKey]ExpensePayment, len(s.Payments)),
	}
	for _, h := range s.History {
		changedAt, err := time.Parse(time.RFC3339, h.ChangedAt)
		if err != nil {
			return nil, fmt.Errorf("expense %s history timestamp: %w", s.ID, ErrValidation)
		}
		f.History = append(f.History, AmountChange{
			Previous:  Money{Cents: h.PreviousCents},
			New:       Money{Cents: h.NewCents},
			ChangedAt: changedAt,
		})
	}
	for key, ps := range s.Payments {
		mk, err := ParseMonthKey(key)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", s.ID, err)
		}
		date, err := ParseDate(ps.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %s month %s: %w", s.ID, key, err)
		}
		f.Payments[mk] = ExpensePayment{Paid: true, Date: date, Amount: Money{Cents: ps.Cents}}
	}
	return f, nil
}
