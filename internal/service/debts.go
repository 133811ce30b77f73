package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/models"
	"github.com/debttrack/debt-service/internal/reconcile"
)

// CreateDebt records a new debt for the user. New debts start as pending.
func (s *Service) CreateDebt(ctx context.Context, debt *models.Debt) error {
	if strings.TrimSpace(debt.CustomerName) == "" {
		return apperr.Validationf("customer_name", "is required")
	}
	if strings.TrimSpace(debt.Phone) == "" {
		return apperr.Validationf("phone", "is required")
	}
	if debt.Amount.IsNegative() {
		return apperr.Validationf("amount", "must not be negative")
	}

	debt.Status = models.StatusPending
	debt.TotalPaid = decimal.Zero
	if err := s.repo.CreateDebt(ctx, debt); err != nil {
		return err
	}
	debt.Remaining = debt.Amount

	s.log.Infof("Debt created for user %d: %s owes %s", debt.UserID, debt.CustomerName, debt.Amount.StringFixed(2))
	return nil
}

// ListDebts returns the user's debts with derived paid and remaining amounts
func (s *Service) ListDebts(ctx context.Context, userID int64) ([]models.Debt, error) {
	return s.repo.ListDebts(ctx, userID)
}

// GetDebt returns one debt with derived amounts
func (s *Service) GetDebt(ctx context.Context, userID, debtID int64) (*models.Debt, error) {
	return s.repo.GetDebt(ctx, userID, debtID)
}

// UpdateDebt edits a debt's customer fields, principal, due date, and status
func (s *Service) UpdateDebt(ctx context.Context, debt *models.Debt) error {
	if strings.TrimSpace(debt.CustomerName) == "" {
		return apperr.Validationf("customer_name", "is required")
	}
	if strings.TrimSpace(debt.Phone) == "" {
		return apperr.Validationf("phone", "is required")
	}
	if debt.Amount.IsNegative() {
		return apperr.Validationf("amount", "must not be negative")
	}
	if !debt.Status.Valid() {
		return apperr.Validationf("status", "unknown status %q", debt.Status)
	}

	if err := s.repo.UpdateDebt(ctx, debt); err != nil {
		return err
	}
	s.log.Infof("Debt %d updated by user %d", debt.ID, debt.UserID)
	return nil
}

// DeleteDebt removes a debt and, through cascades, its payments and history
func (s *Service) DeleteDebt(ctx context.Context, userID, debtID int64) error {
	if err := s.repo.DeleteDebt(ctx, userID, debtID); err != nil {
		return err
	}
	s.log.Infof("Debt %d deleted by user %d", debtID, userID)
	return nil
}

// RecordPayment applies a payment to a debt. Bounds are validated against the
// remaining balance inside the repository transaction, so a failed payment
// leaves no row and no status change behind.
func (s *Service) RecordPayment(ctx context.Context, userID int64, payment *models.Payment) (*models.Debt, error) {
	if !payment.PaymentMethod.Valid() {
		return nil, apperr.Validationf("payment_method", "unknown method %q", payment.PaymentMethod)
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}

	debt, err := s.repo.RecordPayment(ctx, userID, payment)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Payment of %s recorded on debt %d (status %s, remaining %s)",
		payment.Amount.StringFixed(2), debt.ID, debt.Status, debt.Remaining.StringFixed(2))
	return debt, nil
}

// IncreaseDebt raises a debt's principal and records the audit entry. A fully
// paid debt is reopened as partial.
func (s *Service) IncreaseDebt(ctx context.Context, userID, debtID int64, amount decimal.Decimal, reason string) (*models.Debt, *models.DebtHistoryEntry, error) {
	entry := &models.DebtHistoryEntry{
		DebtID: debtID,
		Amount: amount,
		Reason: reason,
	}
	debt, err := s.repo.IncreaseDebt(ctx, userID, entry)
	if err != nil {
		return nil, nil, err
	}

	s.log.Infof("Debt %d increased by %s to %s (status %s)",
		debt.ID, amount.StringFixed(2), debt.Amount.StringFixed(2), debt.Status)
	return debt, entry, nil
}

// Stats aggregates the user's current debt snapshot
func (s *Service) Stats(ctx context.Context, userID int64) (models.DebtStats, error) {
	debts, err := s.repo.ListDebts(ctx, userID)
	if err != nil {
		return models.DebtStats{}, err
	}
	return reconcile.Stats(debts), nil
}

// ListPayments returns a debt's payments, newest first
func (s *Service) ListPayments(ctx context.Context, userID, debtID int64) ([]models.Payment, error) {
	return s.repo.ListPayments(ctx, userID, debtID)
}

// DebtTimeline merges a debt's audit entries and payments into one list,
// newest first. Payments appear as synthetic entries with the payment action.
func (s *Service) DebtTimeline(ctx context.Context, userID, debtID int64) ([]models.DebtHistoryEntry, error) {
	entries, err := s.repo.ListHistory(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		entries = append(entries, models.DebtHistoryEntry{
			ID:         p.ID,
			DebtID:     p.DebtID,
			ActionType: models.ActionPayment,
			Amount:     p.Amount,
			Reason:     p.Notes,
			CreatedAt:  p.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
