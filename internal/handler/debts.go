package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/middleware"
	"github.com/debttrack/debt-service/internal/models"
)

type createDebtRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	Description  string  `json:"description"`
	DueDate      string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type updateDebtRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	Description  string  `json:"description"`
	DueDate      string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status       string  `json:"status" validate:"required,oneof=pending partial paid overdue"`
}

type paymentRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate   string  `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash bank_transfer mobile_money check other"`
	Notes         string  `json:"notes"`
}

type increaseRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason"`
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, apperr.Authf("not authenticated"))
	}
	return userID, ok
}

// CreateDebt records a new debt for the authenticated user
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req createDebtRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.respondError(w, err)
		return
	}

	debt := &models.Debt{
		UserID:       userID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Amount:       decimal.NewFromFloat(req.Amount).Round(2),
		Description:  req.Description,
		DueDate:      dueDate,
	}
	if err := h.svc.CreateDebt(r.Context(), debt); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, debt)
}

// ListDebts returns the user's debts with derived amounts
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debts, err := h.svc.ListDebts(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, debts)
}

// GetDebt returns one debt
func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	debt, err := h.svc.GetDebt(r.Context(), userID, debtID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, debt)
}

// UpdateDebt edits a debt's fields
func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req updateDebtRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.respondError(w, err)
		return
	}

	debt := &models.Debt{
		ID:           debtID,
		UserID:       userID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Amount:       decimal.NewFromFloat(req.Amount).Round(2),
		Description:  req.Description,
		DueDate:      dueDate,
		Status:       models.DebtStatus(req.Status),
	}
	if err := h.svc.UpdateDebt(r.Context(), debt); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, debt)
}

// DeleteDebt removes a debt record; the deletion is irreversible
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.svc.DeleteDebt(r.Context(), userID, debtID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// RecordPayment applies a payment to a debt
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req paymentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	payment := &models.Payment{
		DebtID:        debtID,
		Amount:        decimal.NewFromFloat(req.Amount).Round(2),
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	}
	if req.PaymentDate != "" {
		payment.PaymentDate, _ = time.Parse("2006-01-02", req.PaymentDate)
	}

	debt, err := h.svc.RecordPayment(r.Context(), userID, payment)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, map[string]interface{}{
		"payment": payment,
		"debt":    debt,
	})
}

// ListPayments returns a debt's payments, newest first
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	payments, err := h.svc.ListPayments(r.Context(), userID, debtID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, payments)
}

// IncreaseDebt raises a debt's principal and records the audit entry
func (h *Handler) IncreaseDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req increaseRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	debt, entry, err := h.svc.IncreaseDebt(r.Context(), userID, debtID,
		decimal.NewFromFloat(req.Amount).Round(2), req.Reason)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]interface{}{
		"debt":    debt,
		"history": entry,
	})
}

// DebtHistory returns the merged audit and payment timeline of a debt
func (h *Handler) DebtHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	entries, err := h.svc.DebtTimeline(r.Context(), userID, debtID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, entries)
}

// Stats returns aggregate statistics over the user's debts
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}

// ExportDebts streams the user's ledger as an Excel XML workbook
func (h *Handler) ExportDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	workbook, err := h.svc.ExportDebts(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	filename := fmt.Sprintf("debts-%s.xml", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.ms-excel")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(workbook)
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperr.Validationf("due_date", "must be formatted YYYY-MM-DD")
	}
	return &t, nil
}
