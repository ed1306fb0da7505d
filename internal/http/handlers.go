package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cuentas/internal/core"
	"cuentas/internal/log"
)

type createRecordRequest struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

type addLoanRequest struct {
	Amount      string `json:"amount"`
	StartDate   string `json:"start_date"`
	Description string `json:"description"`
	// Absent means a free-amount loan; present means a fixed schedule.
	Installments *int `json:"installments"`
}

type addPaymentRequest struct {
	Amount  string `json:"amount"`
	Date    string `json:"date"`
	Details string `json:"details"`
}

type createExpenseRequest struct {
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	PaymentDay int    `json:"payment_day"`
	Details    string `json:"details"`
}

type updateAmountRequest struct {
	Amount string `json:"amount"`
}

type expensePaymentRequest struct {
	Month string `json:"month"`
	Date  string `json:"date"`
	// Optional; empty means the expense's current amount.
	Amount string `json:"amount"`
}

func (s *Server) handleCreateDebtor(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if !s.decode(w, r, &req) {
		return
	}
	snap, err := s.tracker.CreateDebtor(r.Context(), req.Name, req.Details)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleCreateCreditor(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if !s.decode(w, r, &req) {
		return
	}
	snap, err := s.tracker.CreateCreditor(r.Context(), req.Name, req.Details)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Record(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddLoan(w http.ResponseWriter, r *http.Request) {
	var req addLoanRequest
	if !s.decode(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	startDate, err := core.ParseDate(req.StartDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.tracker.AddLoan(r.Context(), r.PathValue("id"),
		core.Money{Cents: cents}, startDate, req.Description, req.Installments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleAddLoanPayment(w http.ResponseWriter, r *http.Request) {
	var req addPaymentRequest
	if !s.decode(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.tracker.RegisterLoanPayment(r.Context(),
		r.PathValue("id"), r.PathValue("loanID"),
		core.Money{Cents: cents}, date, req.Details)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !s.decode(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.tracker.CreateFixedExpense(r.Context(), req.Name,
		core.Money{Cents: cents}, req.PaymentDay, req.Details)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteFixedExpense(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateExpenseAmount(w http.ResponseWriter, r *http.Request) {
	var req updateAmountRequest
	if !s.decode(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.tracker.UpdateExpenseAmount(r.Context(), r.PathValue("id"), core.Money{Cents: cents})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRegisterExpensePayment(w http.ResponseWriter, r *http.Request) {
	var req expensePaymentRequest
	if !s.decode(w, r, &req) {
		return
	}

	mk, err := core.ParseMonthKey(req.Month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	date := core.Date{Time: time.Now().UTC().Truncate(24 * time.Hour)}
	if req.Date != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var amount core.Money
	if req.Amount != "" {
		cents, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		amount = core.Money{Cents: cents}
	}

	snap, err := s.tracker.RegisterExpensePayment(r.Context(), r.PathValue("id"), mk, date, amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	mk := currentMonth()
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := core.ParseMonthKey(v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		mk = parsed
	}

	b := s.tracker.Overview(r.Context(), mk)
	s.writeJSON(w, http.StatusOK, overviewResponseFrom(b))
}

func currentMonth() core.MonthKey {
	now := time.Now().UTC()
	return core.MonthKey{Year: now.Year(), Month: now.Month()}
}

// decode reads a JSON body, answering 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.WarnContext(r.Context(), "malformed request body",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses: validation 422,
// unknown ids 404, terminal-state conflicts 409.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidState):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", log.FieldError, err)
	}
}
