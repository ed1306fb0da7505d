package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LoanStatus is the lifecycle state of a loan. Completed is terminal:
// there is no transition back to active and no cancellation path.
type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
)

// LoanType distinguishes free-amount loans from fixed-installment ones.
type LoanType string

const (
	// LoanManual accepts variable payment amounts up to the remaining
	// balance.
	LoanManual LoanType = "manual"
	// LoanAuto only accepts payments equal to the fixed monthly
	// installment derived from principal and installment count.
	LoanAuto LoanType = "auto"
)

// Payment is a single registered payment against a loan. Immutable once
// created and exclusively owned by its loan.
type Payment struct {
	ID      string
	Amount  Money
	Date    Date
	Details string
}

// Loan is a single borrowing or lending instance. Payments are kept in
// recording order, which is not necessarily chronological.
type Loan struct {
	ID          string
	Principal   Money
	StartDate   Date
	Description string
	Payments    []Payment

	// Remaining is principal minus the sum of payments, clamped to
	// zero on completion. Never negative.
	Remaining Money
	Status    LoanStatus

	// Installments is the fixed schedule length; zero for manual
	// loans. MonthlyAmount is principal divided by installments with
	// half-up rounding, zero for manual loans.
	Installments  int
	MonthlyAmount Money
	Type          LoanType
}

// NewLoan creates a manual loan: payments of any positive amount up to
// the remaining balance are accepted.
func NewLoan(principal Money, startDate Date, description string) (*Loan, error) {
	return newLoan(principal, startDate, description, 0)
}

// NewInstallmentLoan creates an auto loan with a fixed schedule of
// installments equal payments. The installment count must be positive.
func NewInstallmentLoan(principal Money, startDate Date, description string, installments int) (*Loan, error) {
	if installments <= 0 {
		return nil, fmt.Errorf("installment count must be positive, got %d: %w", installments, ErrValidation)
	}
	return newLoan(principal, startDate, description, installments)
}

func newLoan(principal Money, startDate Date, description string, installments int) (*Loan, error) {
	if err := principal.Validate(); err != nil {
		return nil, fmt.Errorf("loan principal: %w", err)
	}
	if err := startDate.Validate(); err != nil {
		return nil, fmt.Errorf("loan start date: %w", err)
	}
	l := &Loan{
		ID:          uuid.NewString(),
		Principal:   principal,
		StartDate:   startDate,
		Description: strings.TrimSpace(description),
		Remaining:   principal,
		Status:      LoanActive,
		Type:        LoanManual,
	}
	if installments > 0 {
		l.Installments = installments
		l.MonthlyAmount = Money{Cents: DivideCents(principal.Cents, installments)}
		l.Type = LoanAuto
	}
	return l, nil
}

// AddPayment validates and appends a payment, decrementing the
// remaining balance. When the balance reaches zero the loan flips to
// completed and stays there. Returns the created payment.
//
// Auto loans only accept the fixed installment amount (within the cent
// tolerance); manual loans accept any positive amount not exceeding the
// remaining balance. On any validation failure no state changes.
func (l *Loan) AddPayment(amount Money, date Date, details string) (Payment, error) {
	if l.Status == LoanCompleted {
		return Payment{}, fmt.Errorf("loan %s is already fully paid: %w", l.ID, ErrInvalidState)
	}
	if amount.Cents <= 0 {
		return Payment{}, fmt.Errorf("payment amount must be positive: %w", ErrValidation)
	}
	if err := date.Validate(); err != nil {
		return Payment{}, fmt.Errorf("payment date: %w", err)
	}
	switch l.Type {
	case LoanAuto:
		diff := amount.Cents - l.MonthlyAmount.Cents
		if diff < -ToleranceCents || diff > ToleranceCents {
			return Payment{}, fmt.Errorf("payment must equal the installment amount %s: %w", l.MonthlyAmount, ErrValidation)
		}
	default:
		if amount.Cents > l.Remaining.Cents+ToleranceCents {
			return Payment{}, fmt.Errorf("payment exceeds remaining balance, maximum payable is %s: %w", l.Remaining, ErrValidation)
		}
	}

	p := Payment{
		ID:      uuid.NewString(),
		Amount:  amount,
		Date:    date,
		Details: strings.TrimSpace(details),
	}
	l.Payments = append(l.Payments, p)
	l.Remaining = l.Remaining.Sub(amount)
	if l.Remaining.Cents <= 0 {
		l.Status = LoanCompleted
		l.Remaining = Money{}
	}
	return p, nil
}

// PaymentsInMonth returns the payments whose date falls in the given
// calendar month, matched by the payment date, not the loan start.
func (l *Loan) PaymentsInMonth(mk MonthKey) []Payment {
	var out []Payment
	for _, p := range l.Payments {
		if mk.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// TotalPaid sums all registered payments.
func (l *Loan) TotalPaid() Money {
	var sum Money
	for _, p := range l.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// TotalPaidInMonth sums the payments made in the given month.
func (l *Loan) TotalPaidInMonth(mk MonthKey) Money {
	var sum Money
	for _, p := range l.PaymentsInMonth(mk) {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// MonthlyInstallmentDue returns the installment amount scheduled for
// the given month: the fixed monthly amount while the month falls
// inside the schedule window, zero otherwise. Manual and completed
// loans never have a scheduled amount.
func (l *Loan) MonthlyInstallmentDue(mk MonthKey) Money {
	if l.Type != LoanAuto || l.Status != LoanActive {
		return Money{}
	}
	elapsed := mk.MonthsSince(MonthOf(l.StartDate))
	if elapsed < 0 || elapsed >= l.Installments {
		return Money{}
	}
	return l.MonthlyAmount
}

// RemainingInstallments returns how many scheduled installments are
// left as of the given date, floored at zero. The second return is
// false for manual loans, which have no schedule.
func (l *Loan) RemainingInstallments(asOf Date) (int, bool) {
	if l.Type != LoanAuto {
		return 0, false
	}
	elapsed := MonthOf(asOf).MonthsSince(MonthOf(l.StartDate))
	left := l.Installments - elapsed
	if left < 0 {
		left = 0
	}
	return left, true
}
