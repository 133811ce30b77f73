// Package reconcile derives a debt's financial state and decides status
// transitions whenever its principal or payments change. All arithmetic is
// exact decimal; amounts are compared at two-decimal precision.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/models"
)

// Remaining returns principal minus the sum of payments, floored at zero.
// An overpaid debt reports zero rather than a negative balance.
func Remaining(principal decimal.Decimal, payments []decimal.Decimal) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p)
	}
	remaining := principal.Sub(paid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// RemainingOf returns the remaining balance of a debt whose TotalPaid is populated.
func RemainingOf(debt *models.Debt) decimal.Decimal {
	return Remaining(debt.Amount, []decimal.Decimal{debt.TotalPaid})
}

// PaymentPlan is the post-payment state for the caller to persist.
type PaymentPlan struct {
	Remaining decimal.Decimal
	Status    models.DebtStatus
}

// PlanPayment validates a payment amount against the debt's current remaining
// balance and returns the resulting remaining balance and status. On a
// validation failure no plan is returned and nothing must be persisted.
func PlanPayment(debt *models.Debt, amount decimal.Decimal) (*PaymentPlan, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validationf("amount", "must be greater than 0")
	}
	remaining := RemainingOf(debt)
	if amount.Round(2).GreaterThan(remaining.Round(2)) {
		return nil, apperr.Validationf("amount", "cannot exceed remaining debt of %s", remaining.StringFixed(2))
	}

	after := remaining.Sub(amount)
	plan := &PaymentPlan{Remaining: after, Status: models.StatusPartial}
	if after.Round(2).LessThanOrEqual(decimal.Zero) {
		plan.Remaining = decimal.Zero
		plan.Status = models.StatusPaid
	}
	return plan, nil
}

// IncreasePlan is the post-increase state for the caller to persist.
type IncreasePlan struct {
	NewPrincipal decimal.Decimal
	Status       models.DebtStatus
}

// PlanIncrease validates a principal increase and returns the new principal
// and status. Increasing a fully paid debt reopens it as partial, since prior
// payments no longer cover the new principal; any other status is unchanged.
func PlanIncrease(debt *models.Debt, delta decimal.Decimal) (*IncreasePlan, error) {
	if !delta.IsPositive() {
		return nil, apperr.Validationf("amount", "must be greater than 0")
	}
	plan := &IncreasePlan{
		NewPrincipal: debt.Amount.Add(delta),
		Status:       debt.Status,
	}
	if debt.Status == models.StatusPaid {
		plan.Status = models.StatusPartial
	}
	return plan, nil
}

// Stats aggregates a snapshot of debts with populated TotalPaid fields.
// An empty snapshot yields all zeroes.
func Stats(debts []models.Debt) models.DebtStats {
	stats := models.DebtStats{
		Total:        decimal.Zero,
		Average:      decimal.Zero,
		PaidTotal:    decimal.Zero,
		PendingTotal: decimal.Zero,
		Count:        len(debts),
	}
	for _, d := range debts {
		stats.Total = stats.Total.Add(d.Amount)
		stats.PaidTotal = stats.PaidTotal.Add(d.TotalPaid)
		if d.Status == models.StatusOverdue {
			stats.OverdueCount++
		}
	}
	stats.PendingTotal = stats.Total.Sub(stats.PaidTotal)
	if stats.Count > 0 {
		stats.Average = stats.Total.DivRound(decimal.NewFromInt(int64(stats.Count)), 2)
	}
	return stats
}
