package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodCheck        PaymentMethod = "check"
	MethodOther        PaymentMethod = "other"
)

// Valid reports whether the payment method is a known one
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodMobileMoney, MethodCheck, MethodOther:
		return true
	}
	return false
}

// Payment is a single recorded payment against a debt.
// Payments are immutable once created; there is no edit or delete.
type Payment struct {
	ID            int64           `json:"id"`
	DebtID        int64           `json:"debt_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
