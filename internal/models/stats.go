package models

import "github.com/shopspring/decimal"

// DebtStats represents aggregate statistics over a user's debts
type DebtStats struct {
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	Average      decimal.Decimal `json:"average"`
	PaidTotal    decimal.Decimal `json:"paid_total"`
	PendingTotal decimal.Decimal `json:"pending_total"`
	OverdueCount int             `json:"overdue_count"`
}
