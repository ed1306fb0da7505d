package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AmountChange is one entry in a fixed expense's append-only history.
type AmountChange struct {
	Previous  Money
	New       Money
	ChangedAt time.Time
}

// ExpensePayment records that one calendar month's obligation was paid.
type ExpensePayment struct {
	Paid   bool
	Date   Date
	Amount Money
}

// FixedExpense is a recurring monthly obligation tracked per calendar
// month, independent of any loan. Past month records are never altered
// by amount changes.
type FixedExpense struct {
	ID         string
	Name       string
	Amount     Money
	PaymentDay int
	Details    string
	History    []AmountChange
	Payments   map[MonthKey]ExpensePayment
}

// NewFixedExpense creates a fixed expense. The payment day must be a
// plausible day of month (1-31; 1-28 keeps it valid in every month).
func NewFixedExpense(name string, amount Money, paymentDay int, details string) (*FixedExpense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("expense name cannot be empty: %w", ErrValidation)
	}
	if err := amount.Validate(); err != nil {
		return nil, fmt.Errorf("expense amount: %w", err)
	}
	if paymentDay < 1 || paymentDay > 31 {
		return nil, fmt.Errorf("payment day must be between 1 and 31, got %d: %w", paymentDay, ErrValidation)
	}
	return &FixedExpense{
		ID:         uuid.NewString(),
		Name:       name,
		Amount:     amount,
		PaymentDay: paymentDay,
		Details:    strings.TrimSpace(details),
		Payments:   make(map[MonthKey]ExpensePayment),
	}, nil
}

// UpdateAmount appends a history entry and sets the new current amount.
// Past month records keep the amount they were registered with.
func (f *FixedExpense) UpdateAmount(newAmount Money) error {
	if err := newAmount.Validate(); err != nil {
		return fmt.Errorf("expense amount: %w", err)
	}
	f.History = append(f.History, AmountChange{
		Previous:  f.Amount,
		New:       newAmount,
		ChangedAt: time.Now().UTC(),
	})
	f.Amount = newAmount
	return nil
}

// RegisterPayment marks the month as paid. Registering the same month
// again overwrites the earlier record: at most one record per month. A
// zero actualAmount defaults to the expense's current amount.
func (f *FixedExpense) RegisterPayment(mk MonthKey, paymentDate Date, actualAmount Money) (ExpensePayment, error) {
	if err := mk.Validate(); err != nil {
		return ExpensePayment{}, err
	}
	if err := paymentDate.Validate(); err != nil {
		return ExpensePayment{}, fmt.Errorf("payment date: %w", err)
	}
	amount := actualAmount
	if amount.IsZero() {
		amount = f.Amount
	}
	if err := amount.Validate(); err != nil {
		return ExpensePayment{}, fmt.Errorf("payment amount: %w", err)
	}
	if f.Payments == nil {
		f.Payments = make(map[MonthKey]ExpensePayment)
	}
	p := ExpensePayment{Paid: true, Date: paymentDate, Amount: amount}
	f.Payments[mk] = p
	return p, nil
}

// IsMonthPaid reports whether the month has a payment record.
func (f *FixedExpense) IsMonthPaid(mk MonthKey) bool {
	return f.Payments[mk].Paid
}

// MonthPayment returns the month's payment record, if any.
func (f *FixedExpense) MonthPayment(mk MonthKey) (ExpensePayment, bool) {
	p, ok := f.Payments[mk]
	return p, ok
}
