package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus is the lifecycle status of a debt
type DebtStatus string

const (
	StatusPending DebtStatus = "pending"
	StatusPartial DebtStatus = "partial"
	StatusPaid    DebtStatus = "paid"
	StatusOverdue DebtStatus = "overdue"
)

// Valid reports whether the status is one of the known lifecycle states
func (s DebtStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Debt represents a receivable owed by a customer to the owning user.
// TotalPaid and Remaining are derived at read time, never stored.
type Debt struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	Status       DebtStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Remaining    decimal.Decimal `json:"remaining_amount"`
}
