package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DebtRecord is a named counterparty (debtor or creditor) aggregating
// zero or more loans. It exclusively owns its loans; deleting a record
// cascades to them.
type DebtRecord struct {
	ID      string
	Name    string
	Details string
	Loans   []*Loan

	// TotalOwed is the sum of remaining balances over active loans.
	// Derived: recomputed after every mutation, never set directly.
	TotalOwed Money
}

// NewDebtRecord creates an empty record for the named counterparty.
func NewDebtRecord(name, details string) (*DebtRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("record name cannot be empty: %w", ErrValidation)
	}
	return &DebtRecord{
		ID:      uuid.NewString(),
		Name:    name,
		Details: strings.TrimSpace(details),
	}, nil
}

// AddLoan appends a new manual loan and recomputes the total owed.
func (r *DebtRecord) AddLoan(principal Money, startDate Date, description string) (*Loan, error) {
	l, err := NewLoan(principal, startDate, description)
	if err != nil {
		return nil, err
	}
	r.Loans = append(r.Loans, l)
	r.UpdateTotalOwed()
	return l, nil
}

// AddInstallmentLoan appends a new auto loan with a fixed schedule and
// recomputes the total owed.
func (r *DebtRecord) AddInstallmentLoan(principal Money, startDate Date, description string, installments int) (*Loan, error) {
	l, err := NewInstallmentLoan(principal, startDate, description, installments)
	if err != nil {
		return nil, err
	}
	r.Loans = append(r.Loans, l)
	r.UpdateTotalOwed()
	return l, nil
}

// AddPaymentToLoan registers a payment against the identified loan.
// Fails with ErrNotFound when no loan matches, ErrInvalidState when the
// loan is already completed, or the loan's own validation error. The
// total owed is recomputed on success.
func (r *DebtRecord) AddPaymentToLoan(loanID string, amount Money, date Date, details string) (Payment, error) {
	l := r.findLoan(loanID)
	if l == nil {
		return Payment{}, fmt.Errorf("loan %s: %w", loanID, ErrNotFound)
	}
	if l.Status == LoanCompleted {
		return Payment{}, fmt.Errorf("loan %s is already fully paid: %w", loanID, ErrInvalidState)
	}
	p, err := l.AddPayment(amount, date, details)
	if err != nil {
		return Payment{}, err
	}
	r.UpdateTotalOwed()
	return p, nil
}

// UpdateTotalOwed recomputes the derived total from active loans.
func (r *DebtRecord) UpdateTotalOwed() {
	var sum Money
	for _, l := range r.Loans {
		if l.Status == LoanActive {
			sum = sum.Add(l.Remaining)
		}
	}
	r.TotalOwed = sum
}

// ActiveLoans returns the loans still carrying a balance.
func (r *DebtRecord) ActiveLoans() []*Loan {
	return r.loansByStatus(LoanActive)
}

// CompletedLoans returns the fully paid loans.
func (r *DebtRecord) CompletedLoans() []*Loan {
	return r.loansByStatus(LoanCompleted)
}

func (r *DebtRecord) loansByStatus(status LoanStatus) []*Loan {
	var out []*Loan
	for _, l := range r.Loans {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

// Loan returns the loan with the given id, or ErrNotFound.
func (r *DebtRecord) Loan(id string) (*Loan, error) {
	if l := r.findLoan(id); l != nil {
		return l, nil
	}
	return nil, fmt.Errorf("loan %s: %w", id, ErrNotFound)
}

func (r *DebtRecord) findLoan(id string) *Loan {
	for _, l := range r.Loans {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LoanPayment is a payment annotated with its originating loan.
type LoanPayment struct {
	Payment
	LoanID          string
	LoanDescription string
}

// RecordOverview is a record's month-scoped summary.
type RecordOverview struct {
	RecordID    string
	Name        string
	TotalOwed   Money
	ActiveLoans int
	// Payments are all payments made in the month across the record's
	// loans, each annotated with its loan.
	Payments    []LoanPayment
	TotalPaid   Money
	// InstallmentsDue is the sum of installment amounts scheduled for
	// the month over all loans.
	InstallmentsDue Money
}

// MonthlyOverview summarizes the record for one calendar month.
func (r *DebtRecord) MonthlyOverview(mk MonthKey) RecordOverview {
	ov := RecordOverview{
		RecordID:    r.ID,
		Name:        r.Name,
		TotalOwed:   r.TotalOwed,
		ActiveLoans: len(r.ActiveLoans()),
	}
	for _, l := range r.Loans {
		for _, p := range l.PaymentsInMonth(mk) {
			ov.Payments = append(ov.Payments, LoanPayment{
				Payment:         p,
				LoanID:          l.ID,
				LoanDescription: l.Description,
			})
			ov.TotalPaid = ov.TotalPaid.Add(p.Amount)
		}
		ov.InstallmentsDue = ov.InstallmentsDue.Add(l.MonthlyInstallmentDue(mk))
	}
	return ov
}
