package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryAction is the kind of non-payment mutation recorded in the audit trail
type HistoryAction string

const (
	ActionIncrease     HistoryAction = "increase"
	ActionPayment      HistoryAction = "payment"
	ActionStatusChange HistoryAction = "status_change"
)

// DebtHistoryEntry is an append-only audit record of a debt mutation
type DebtHistoryEntry struct {
	ID             int64           `json:"id"`
	DebtID         int64           `json:"debt_id"`
	ActionType     HistoryAction   `json:"action_type"`
	Amount         decimal.Decimal `json:"amount"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
