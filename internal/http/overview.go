package http

import "cuentas/internal/core"

// Wire form of the monthly overview. Amounts are decimal strings.
type overviewResponse struct {
	Month     string              `json:"month"`
	Debtors   []recordOverviewDTO `json:"debtors"`
	Creditors []recordOverviewDTO `json:"creditors"`
	Expenses  []expenseStatusDTO  `json:"expenses"`
	Totals    overviewTotalsDTO   `json:"totals"`
}

type overviewTotalsDTO struct {
	TotalOwedIncoming  string `json:"total_owed_incoming"`
	TotalOwedOutgoing  string `json:"total_owed_outgoing"`
	IncomingDue        string `json:"incoming_due"`
	OutgoingDue        string `json:"outgoing_due"`
	FixedPending       string `json:"fixed_pending"`
	Balance            string `json:"balance"`
	OutstandingBalance string `json:"outstanding_balance"`
}

type recordOverviewDTO struct {
	RecordID        string           `json:"record_id"`
	Name            string           `json:"name"`
	TotalOwed       string           `json:"total_owed"`
	ActiveLoans     int              `json:"active_loans"`
	TotalPaid       string           `json:"total_paid"`
	InstallmentsDue string           `json:"installments_due"`
	Payments        []loanPaymentDTO `json:"payments,omitempty"`
}

type loanPaymentDTO struct {
	ID              string `json:"id"`
	LoanID          string `json:"loan_id"`
	LoanDescription string `json:"loan_description,omitempty"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	Details         string `json:"details,omitempty"`
}

type expenseStatusDTO struct {
	ExpenseID  string `json:"expense_id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	PaymentDay int    `json:"payment_day"`
	Paid       bool   `json:"paid"`
}

func overviewResponseFrom(b core.MonthlyBalance) overviewResponse {
	resp := overviewResponse{
		Month:     b.Month.String(),
		Debtors:   make([]recordOverviewDTO, 0, len(b.Debtors)),
		Creditors: make([]recordOverviewDTO, 0, len(b.Creditors)),
		Expenses:  make([]expenseStatusDTO, 0, len(b.Expenses)),
		Totals: overviewTotalsDTO{
			TotalOwedIncoming:  b.TotalOwedIncoming.String(),
			TotalOwedOutgoing:  b.TotalOwedOutgoing.String(),
			IncomingDue:        b.IncomingDue.String(),
			OutgoingDue:        b.OutgoingDue.String(),
			FixedPending:       b.FixedPending.String(),
			Balance:            b.Balance.String(),
			OutstandingBalance: b.OutstandingBalance.String(),
		},
	}
	for _, ov := range b.Debtors {
		resp.Debtors = append(resp.Debtors, recordOverviewDTOFrom(ov))
	}
	for _, ov := range b.Creditors {
		resp.Creditors = append(resp.Creditors, recordOverviewDTOFrom(ov))
	}
	for _, e := range b.Expenses {
		resp.Expenses = append(resp.Expenses, expenseStatusDTO{
			ExpenseID:  e.ExpenseID,
			Name:       e.Name,
			Amount:     e.Amount.String(),
			PaymentDay: e.PaymentDay,
			Paid:       e.Paid,
		})
	}
	return resp
}

func recordOverviewDTOFrom(ov core.RecordOverview) recordOverviewDTO {
	dto := recordOverviewDTO{
		RecordID:        ov.RecordID,
		Name:            ov.Name,
		TotalOwed:       ov.TotalOwed.String(),
		ActiveLoans:     ov.ActiveLoans,
		TotalPaid:       ov.TotalPaid.String(),
		InstallmentsDue: ov.InstallmentsDue.String(),
	}
	for _, p := range ov.Payments {
		dto.Payments = append(dto.Payments, loanPaymentDTO{
			ID:              p.ID,
			LoanID:          p.LoanID,
			LoanDescription: p.LoanDescription,
			Amount:          p.Amount.String(),
			Date:            p.Date.String(),
			Details:         p.Details,
		})
	}
	return dto
}
