package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/models"
	"github.com/debttrack/debt-service/internal/reconcile"
)

// CreateDebt inserts a new debt for the owning user
func (r *Repository) CreateDebt(ctx context.Context, debt *models.Debt) error {
	query := `
		INSERT INTO debt.debts (user_id, customer_name, phone, amount, description, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		debt.UserID, debt.CustomerName, debt.Phone, debt.Amount, debt.Description, nullTime(debt.DueDate), debt.Status).
		Scan(&debt.ID, &debt.CreatedAt, &debt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

// ListDebts returns the user's debts newest first, each with its paid total
// aggregated from the payments table and the remaining balance derived.
func (r *Repository) ListDebts(ctx context.Context, userID int64) ([]models.Debt, error) {
	query := `
		SELECT d.id, d.user_id, d.customer_name, d.phone, d.amount, d.description, d.due_date, d.status,
		       d.created_at, d.updated_at, COALESCE(SUM(p.amount), 0) AS total_paid
		FROM debt.debts d
		LEFT JOIN debt.payments p ON p.debt_id = d.id
		WHERE d.user_id = $1
		GROUP BY d.id
		ORDER BY d.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read debts: %w", err)
	}
	return debts, nil
}

// GetDebt returns one of the user's debts with its paid total aggregated
func (r *Repository) GetDebt(ctx context.Context, userID, debtID int64) (*models.Debt, error) {
	query := `
		SELECT d.id, d.user_id, d.customer_name, d.phone, d.amount, d.description, d.due_date, d.status,
		       d.created_at, d.updated_at, COALESCE(SUM(p.amount), 0) AS total_paid
		FROM debt.debts d
		LEFT JOIN debt.payments p ON p.debt_id = d.id
		WHERE d.id = $1 AND d.user_id = $2
		GROUP BY d.id`
	debt, err := scanDebt(r.db.QueryRowContext(ctx, query, debtID, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return debt, nil
}

// UpdateDebt edits a debt's customer fields, principal, due date, and status
func (r *Repository) UpdateDebt(ctx context.Context, debt *models.Debt) error {
	query := `
		UPDATE debt.debts
		SET customer_name = $1, phone = $2, amount = $3, description = $4, due_date = $5, status = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		debt.CustomerName, debt.Phone, debt.Amount, debt.Description, nullTime(debt.DueDate), debt.Status,
		debt.ID, debt.UserID).
		Scan(&debt.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return nil
}

// DeleteDebt removes a debt; payments and history cascade at the database level
func (r *Repository) DeleteDebt(ctx context.Context, userID, debtID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM debt.debts WHERE id = $1 AND user_id = $2`, debtID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// RecordPayment appends a payment and moves the debt's status in one
// transaction. The debt row is locked and the remaining balance re-derived
// from committed payments before validation, so two concurrent payments can
// never overdraw the principal: the second sees the first or fails validation.
func (r *Repository) RecordPayment(ctx context.Context, userID int64, payment *models.Payment) (*models.Debt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	debt, err := lockDebt(ctx, tx, userID, payment.DebtID)
	if err != nil {
		return nil, err
	}

	plan, err := reconcile.PlanPayment(debt, payment.Amount)
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO debt.payments (debt_id, amount, payment_date, payment_method, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, insert,
		payment.DebtID, payment.Amount, payment.PaymentDate, payment.PaymentMethod, payment.Notes).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	update := `
		UPDATE debt.debts
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING updated_at`
	if err := tx.QueryRowContext(ctx, update, plan.Status, debt.ID).Scan(&debt.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update debt status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	debt.Status = plan.Status
	debt.TotalPaid = debt.TotalPaid.Add(payment.Amount)
	debt.Remaining = plan.Remaining
	return debt, nil
}

// IncreaseDebt raises the principal and appends the audit entry in one
// transaction. A paid debt is reopened as partial.
func (r *Repository) IncreaseDebt(ctx context.Context, userID int64, entry *models.DebtHistoryEntry) (*models.Debt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	debt, err := lockDebt(ctx, tx, userID, entry.DebtID)
	if err != nil {
		return nil, err
	}

	plan, err := reconcile.PlanIncrease(debt, entry.Amount)
	if err != nil {
		return nil, err
	}
	entry.ActionType = models.ActionIncrease
	entry.PreviousAmount = debt.Amount
	entry.NewAmount = plan.NewPrincipal

	update := `
		UPDATE debt.debts
		SET amount = $1, status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at`
	if err := tx.QueryRowContext(ctx, update, plan.NewPrincipal, plan.Status, debt.ID).Scan(&debt.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update debt amount: %w", err)
	}

	insert := `
		INSERT INTO debt.debt_history (debt_id, action_type, amount, previous_amount, new_amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, insert,
		entry.DebtID, entry.ActionType, entry.Amount, entry.PreviousAmount, entry.NewAmount, entry.Reason).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record debt increase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit increase: %w", err)
	}

	debt.Amount = plan.NewPrincipal
	debt.Status = plan.Status
	debt.Remaining = reconcile.RemainingOf(debt)
	return debt, nil
}

// ListPayments returns a debt's payments newest first, owner-scoped
func (r *Repository) ListPayments(ctx context.Context, userID, debtID int64) ([]models.Payment, error) {
	query := `
		SELECT p.id, p.debt_id, p.amount, p.payment_date, p.payment_method, p.notes, p.created_at
		FROM debt.payments p
		JOIN debt.debts d ON d.id = p.debt_id
		WHERE p.debt_id = $1 AND d.user_id = $2
		ORDER BY p.payment_date DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query, debtID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}
	return payments, nil
}

// ListHistory returns a debt's audit entries newest first, owner-scoped
func (r *Repository) ListHistory(ctx context.Context, userID, debtID int64) ([]models.DebtHistoryEntry, error) {
	query := `
		SELECT h.id, h.debt_id, h.action_type, h.amount, h.previous_amount, h.new_amount, h.reason, h.created_at
		FROM debt.debt_history h
		JOIN debt.debts d ON d.id = h.debt_id
		WHERE h.debt_id = $1 AND d.user_id = $2
		ORDER BY h.created_at DESC, h.id DESC`
	rows, err := r.db.QueryContext(ctx, query, debtID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debt history: %w", err)
	}
	defer rows.Close()

	entries := []models.DebtHistoryEntry{}
	for rows.Next() {
		var e models.DebtHistoryEntry
		if err := rows.Scan(&e.ID, &e.DebtID, &e.ActionType, &e.Amount, &e.PreviousAmount, &e.NewAmount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read debt history: %w", err)
	}
	return entries, nil
}

// MarkOverdue flags pending and partial debts whose due date has passed.
// Returns the number of flagged debts per owning user.
func (r *Repository) MarkOverdue(ctx context.Context, asOf time.Time) (map[int64]int, error) {
	query := `
		UPDATE debt.debts
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE status IN ($2, $3) AND due_date IS NOT NULL AND due_date < $4
		RETURNING user_id`
	rows, err := r.db.QueryContext(ctx, query, models.StatusOverdue, models.StatusPending, models.StatusPartial, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue debts: %w", err)
	}
	defer rows.Close()

	flagged := map[int64]int{}
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan overdue row: %w", err)
		}
		flagged[userID]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read overdue rows: %w", err)
	}
	return flagged, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDebt(row rowScanner) (*models.Debt, error) {
	debt := &models.Debt{}
	var dueDate sql.NullTime
	err := row.Scan(&debt.ID, &debt.UserID, &debt.CustomerName, &debt.Phone, &debt.Amount,
		&debt.Description, &dueDate, &debt.Status, &debt.CreatedAt, &debt.UpdatedAt, &debt.TotalPaid)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan debt: %w", err)
	}
	if dueDate.Valid {
		t := dueDate.Time
		debt.DueDate = &t
	}
	debt.Remaining = reconcile.RemainingOf(debt)
	return debt, nil
}

// lockDebt reads the debt row FOR UPDATE inside tx, with the paid total
// re-derived from committed payments.
func lockDebt(ctx context.Context, tx *sql.Tx, userID, debtID int64) (*models.Debt, error) {
	query := `
		SELECT d.id, d.user_id, d.customer_name, d.phone, d.amount, d.description, d.due_date, d.status,
		       d.created_at, d.updated_at,
		       COALESCE((SELECT SUM(p.amount) FROM debt.payments p WHERE p.debt_id = d.id), 0) AS total_paid
		FROM debt.debts d
		WHERE d.id = $1 AND d.user_id = $2
		FOR UPDATE OF d`
	debt, err := scanDebt(tx.QueryRowContext(ctx, query, debtID, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return debt, err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
