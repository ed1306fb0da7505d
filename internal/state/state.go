// Package state holds the in-memory working set of the tracker: the
// debtor and creditor records and the fixed expenses. It is not safe
// for concurrent use; the owning service serializes access.
package state

import (
	"fmt"

	"cuentas/internal/core"
)

// Side selects one of the two debt record collections.
type Side string

const (
	SideDebtor   Side = "debtor"
	SideCreditor Side = "creditor"
)

// State is the whole tracked dataset.
type State struct {
	Debtors       []*core.DebtRecord
	Creditors     []*core.DebtRecord
	FixedExpenses []*core.FixedExpense
}

// New returns an empty state.
func New() *State {
	return &State{}
}

// AddRecord appends a record to the given side.
func (s *State) AddRecord(side Side, r *core.DebtRecord) {
	if side == SideCreditor {
		s.Creditors = append(s.Creditors, r)
		return
	}
	s.Debtors = append(s.Debtors, r)
}

// Record finds a debt record by id on either side.
func (s *State) Record(id string) (*core.DebtRecord, Side, error) {
	for _, r := range s.Debtors {
		if r.ID == id {
			return r, SideDebtor, nil
		}
	}
	for _, r := range s.Creditors {
		if r.ID == id {
			return r, SideCreditor, nil
		}
	}
	return nil, "", fmt.Errorf("record %s: %w", id, core.ErrNotFound)
}

// DeleteRecord removes a record by id from whichever side holds it.
// The record's loans and payments go with it.
func (s *State) DeleteRecord(id string) (Side, error) {
	if rest, ok := without(s.Debtors, id); ok {
		s.Debtors = rest
		return SideDebtor, nil
	}
	if rest, ok := without(s.Creditors, id); ok {
		s.Creditors = rest
		return SideCreditor, nil
	}
	return "", fmt.Errorf("record %s: %w", id, core.ErrNotFound)
}

func without(records []*core.DebtRecord, id string) ([]*core.DebtRecord, bool) {
	for i, r := range records {
		if r.ID == id {
			return append(records[:i], records[i+1:]...), true
		}
	}
	return records, false
}

// AddExpense appends a fixed expense.
func (s *State) AddExpense(f *core.FixedExpense) {
	s.FixedExpenses = append(s.FixedExpenses, f)
}

// Expense finds a fixed expense by id.
func (s *State) Expense(id string) (*core.FixedExpense, error) {
	for _, f := range s.FixedExpenses {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
}

// DeleteExpense removes a fixed expense by id.
func (s *State) DeleteExpense(id string) error {
	for i, f := range s.FixedExpenses {
		if f.ID == id {
			s.FixedExpenses = append(s.FixedExpenses[:i], s.FixedExpenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
}

// MonthlyBalance computes the month summary over the current state.
func (s *State) MonthlyBalance(mk core.MonthKey) core.MonthlyBalance {
	return core.ComputeMonthlyBalance(mk, s.Debtors, s.Creditors, s.FixedExpenses)
}

// Snapshot projects the whole state into its plain-data form.
func (s *State) Snapshot() core.StateSnapshot {
	snap := core.StateSnapshot{
		Debtors:       make([]core.DebtRecordSnapshot, 0, len(s.Debtors)),
		Creditors:     make([]core.DebtRecordSnapshot, 0, len(s.Creditors)),
		FixedExpenses: make([]core.FixedExpenseSnapshot, 0, len(s.FixedExpenses)),
	}
	for _, r := range s.Debtors {
		snap.Debtors = append(snap.Debtors, r.Snapshot())
	}
	for _, r := range s.Creditors {
		snap.Creditors = append(snap.Creditors, r.Snapshot())
	}
	for _, f := range s.FixedExpenses {
		snap.FixedExpenses = append(snap.FixedExpenses, f.Snapshot())
	}
	return snap
}

// FromSnapshot rebuilds a state, recomputing all derived values.
func FromSnapshot(snap core.StateSnapshot) (*State, error) {
	s := New()
	for _, rs := range snap.Debtors {
		r, err := core.DebtRecordFromSnapshot(rs)
		if err != nil {
			return nil, fmt.Errorf("debtor: %w", err)
		}
		s.Debtors = append(s.Debtors, r)
	}
	for _, rs := range snap.Creditors {
		r, err := core.DebtRecordFromSnapshot(rs)
		if err != nil {
			return nil, fmt.Errorf("creditor: %w", err)
		}
		s.Creditors = append(s.Creditors, r)
	}
	for _, fs := range snap.FixedExpenses {
		f, err := core.FixedExpenseFromSnapshot(fs)
		if err != nil {
			return nil, err
		}
		s.FixedExpenses = append(s.FixedExpenses, f)
	}
	return s, nil
}
