package core

// ExpenseStatus is a fixed expense's paid/pending state for one month.
type ExpenseStatus struct {
	ExpenseID  string
	Name       string
	Amount     Money
	PaymentDay int
	Paid       bool
}

// MonthlyBalance is the month-scoped summary over all debtors,
// creditors and fixed expenses.
//
// The source system mixed two semantics in its overview: the summary
// list summed all-time outstanding balances while a separate figure was
// month-scoped. Here the primary Balance is month-scoped (installments
// due minus fixed pending); the all-time outstanding totals are kept as
// display values with their own OutstandingBalance.
type MonthlyBalance struct {
	Month MonthKey

	Debtors   []RecordOverview
	Creditors []RecordOverview
	Expenses  []ExpenseStatus

	// All-time outstanding totals (sum of TotalOwed per side).
	TotalOwedIncoming Money
	TotalOwedOutgoing Money

	// Month-scoped installment dues per side.
	IncomingDue Money
	OutgoingDue Money

	// FixedPending is the sum of amounts of expenses not yet paid for
	// the month.
	FixedPending Money

	// Balance = IncomingDue - OutgoingDue - FixedPending.
	Balance Money
	// OutstandingBalance = TotalOwedIncoming - TotalOwedOutgoing - FixedPending.
	OutstandingBalance Money
}

// ComputeMonthlyBalance derives the month summary from the three
// collections. Pure: no side effects, safe to call repeatedly for the
// same inputs.
func ComputeMonthlyBalance(mk MonthKey, debtors, creditors []*DebtRecord, expenses []*FixedExpense) MonthlyBalance {
	b := MonthlyBalance{Month: mk}

	for _, d := range debtors {
		ov := d.MonthlyOverview(mk)
		b.Debtors = append(b.Debtors, ov)
		b.TotalOwedIncoming = b.TotalOwedIncoming.Add(ov.TotalOwed)
		b.IncomingDue = b.IncomingDue.Add(ov.InstallmentsDue)
	}
	for _, c := range creditors {
		ov := c.MonthlyOverview(mk)
		b.Creditors = append(b.Creditors, ov)
		b.TotalOwedOutgoing = b.TotalOwedOutgoing.Add(ov.TotalOwed)
		b.OutgoingDue = b.OutgoingDue.Add(ov.InstallmentsDue)
	}
	for _, e := range expenses {
		paid := e.IsMonthPaid(mk)
		b.Expenses = append(b.Expenses, ExpenseStatus{
			ExpenseID:  e.ID,
			Name:       e.Name,
			Amount:     e.Amount,
			PaymentDay: e.PaymentDay,
			Paid:       paid,
		})
		if !paid {
			b.FixedPending = b.FixedPending.Add(e.Amount)
		}
	}

	b.Balance = b.IncomingDue.Sub(b.OutgoingDue).Sub(b.FixedPending)
	b.OutstandingBalance = b.TotalOwedIncoming.Sub(b.TotalOwedOutgoing).Sub(b.FixedPending)
	return b
}
