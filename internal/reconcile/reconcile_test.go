package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debt(amount, paid string, status models.DebtStatus) *models.Debt {
	return &models.Debt{
		Amount:    dec(amount),
		TotalPaid: dec(paid),
		Status:    status,
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		payments  []string
		want      string
	}{
		{"no payments", "100", nil, "100"},
		{"partial payments", "100", []string{"40", "10"}, "50"},
		{"exact payoff", "100", []string{"60", "40"}, "0"},
		{"overpayment clamps to zero", "100", []string{"80", "30"}, "0"},
		{"zero principal", "0", nil, "0"},
		{"cents arithmetic", "50.00", []string{"49.99"}, "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := make([]decimal.Decimal, 0, len(tt.payments))
			for _, p := range tt.payments {
				payments = append(payments, dec(p))
			}
			got := Remaining(dec(tt.principal), payments)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Remaining(%s, %v) = %s, want %s", tt.principal, tt.payments, got, tt.want)
			}
			if got.IsNegative() {
				t.Errorf("Remaining(%s, %v) = %s, must never be negative", tt.principal, tt.payments, got)
			}
		})
	}
}

func TestPlanPaymentRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5"} {
		_, err := PlanPayment(debt("100", "0", models.StatusPending), dec(amount))
		if err == nil {
			t.Fatalf("PlanPayment(amount=%s) succeeded, want validation error", amount)
		}
		if !apperr.IsValidation(err) {
			t.Errorf("PlanPayment(amount=%s) error = %v, want ValidationError", amount, err)
		}
	}
}

func TestPlanPaymentRejectsOverpayment(t *testing.T) {
	// remaining 50.00, attempted 50.01
	_, err := PlanPayment(debt("100", "50", models.StatusPartial), dec("50.01"))
	if err == nil {
		t.Fatal("PlanPayment succeeded on amount above remaining, want validation error")
	}
	if !apperr.IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestPlanPaymentFullSettlement(t *testing.T) {
	plan, err := PlanPayment(debt("100", "0", models.StatusPending), dec("100"))
	if err != nil {
		t.Fatalf("PlanPayment failed: %v", err)
	}
	if plan.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid", plan.Status)
	}
	if !plan.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", plan.Remaining)
	}
}

func TestPlanPaymentPartialSettlement(t *testing.T) {
	plan, err := PlanPayment(debt("100", "0", models.StatusPending), dec("40"))
	if err != nil {
		t.Fatalf("PlanPayment failed: %v", err)
	}
	if plan.Status != models.StatusPartial {
		t.Errorf("status = %s, want partial", plan.Status)
	}
	if !plan.Remaining.Equal(dec("60")) {
		t.Errorf("remaining = %s, want 60", plan.Remaining)
	}
}

func TestPlanPaymentOnOverdueDebt(t *testing.T) {
	plan, err := PlanPayment(debt("100", "20", models.StatusOverdue), dec("80"))
	if err != nil {
		t.Fatalf("PlanPayment failed: %v", err)
	}
	if plan.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid after full settlement of overdue debt", plan.Status)
	}
}

func TestPlanPaymentSubCentResidueCountsAsPaid(t *testing.T) {
	// Residue below a cent is treated as settled at two-decimal precision
	plan, err := PlanPayment(debt("100", "0", models.StatusPending), dec("99.996"))
	if err != nil {
		t.Fatalf("PlanPayment failed: %v", err)
	}
	if plan.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid for sub-cent residue", plan.Status)
	}
	if !plan.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", plan.Remaining)
	}
}

func TestPlanIncreaseReopensPaidDebt(t *testing.T) {
	plan, err := PlanIncrease(debt("100", "100", models.StatusPaid), dec("25"))
	if err != nil {
		t.Fatalf("PlanIncrease failed: %v", err)
	}
	if !plan.NewPrincipal.Equal(dec("125")) {
		t.Errorf("new principal = %s, want 125", plan.NewPrincipal)
	}
	if plan.Status != models.StatusPartial {
		t.Errorf("status = %s, want partial", plan.Status)
	}
}

func TestPlanIncreaseKeepsOtherStatuses(t *testing.T) {
	for _, status := range []models.DebtStatus{models.StatusPending, models.StatusPartial, models.StatusOverdue} {
		plan, err := PlanIncrease(debt("100", "0", status), dec("25"))
		if err != nil {
			t.Fatalf("PlanIncrease failed for %s: %v", status, err)
		}
		if !plan.NewPrincipal.Equal(dec("125")) {
			t.Errorf("new principal = %s, want 125", plan.NewPrincipal)
		}
		if plan.Status != status {
			t.Errorf("status = %s, want unchanged %s", plan.Status, status)
		}
	}
}

func TestPlanIncreaseRejectsNonPositiveDelta(t *testing.T) {
	for _, delta := range []string{"0", "-10"} {
		_, err := PlanIncrease(debt("100", "0", models.StatusPending), dec(delta))
		if err == nil {
			t.Fatalf("PlanIncrease(delta=%s) succeeded, want validation error", delta)
		}
		if !apperr.IsValidation(err) {
			t.Errorf("PlanIncrease(delta=%s) error = %v, want ValidationError", delta, err)
		}
	}
}

func TestStatsEmptySnapshot(t *testing.T) {
	stats := Stats(nil)
	if stats.Count != 0 || stats.OverdueCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", stats.Count, stats.OverdueCount)
	}
	for name, v := range map[string]decimal.Decimal{
		"total":   stats.Total,
		"average": stats.Average,
		"paid":    stats.PaidTotal,
		"pending": stats.PendingTotal,
	} {
		if !v.IsZero() {
			t.Errorf("%s = %s, want 0", name, v)
		}
	}
}

func TestStatsAggregation(t *testing.T) {
	debts := []models.Debt{
		*debt("100", "40", models.StatusPartial),
		*debt("50", "0", models.StatusPending),
	}
	stats := Stats(debts)

	if stats.Count != 2 {
		t.Errorf("count = %d, want 2", stats.Count)
	}
	if !stats.Total.Equal(dec("150")) {
		t.Errorf("total = %s, want 150", stats.Total)
	}
	if !stats.PaidTotal.Equal(dec("40")) {
		t.Errorf("paid total = %s, want 40", stats.PaidTotal)
	}
	if !stats.PendingTotal.Equal(dec("110")) {
		t.Errorf("pending total = %s, want 110", stats.PendingTotal)
	}
	if !stats.Average.Equal(dec("75")) {
		t.Errorf("average = %s, want 75", stats.Average)
	}
}

func TestStatsCountsOverdue(t *testing.T) {
	debts := []models.Debt{
		*debt("100", "0", models.StatusOverdue),
		*debt("30", "10", models.StatusOverdue),
		*debt("50", "50", models.StatusPaid),
	}
	if got := Stats(debts).OverdueCount; got != 2 {
		t.Errorf("overdue count = %d, want 2", got)
	}
}

// Walks a debt through the full lifecycle: partial payment, settlement, then
// an increase that reopens it.
func TestDebtLifecycle(t *testing.T) {
	d := debt("200", "0", models.StatusPending)

	plan, err := PlanPayment(d, dec("120"))
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if plan.Status != models.StatusPartial || !plan.Remaining.Equal(dec("80")) {
		t.Fatalf("after 120 payment: status=%s remaining=%s, want partial/80", plan.Status, plan.Remaining)
	}
	d.TotalPaid = d.TotalPaid.Add(dec("120"))
	d.Status = plan.Status

	plan, err = PlanPayment(d, dec("80"))
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if plan.Status != models.StatusPaid || !plan.Remaining.IsZero() {
		t.Fatalf("after 80 payment: status=%s remaining=%s, want paid/0", plan.Status, plan.Remaining)
	}
	d.TotalPaid = d.TotalPaid.Add(dec("80"))
	d.Status = plan.Status

	inc, err := PlanIncrease(d, dec("50"))
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if inc.Status != models.StatusPartial || !inc.NewPrincipal.Equal(dec("250")) {
		t.Fatalf("after increase: status=%s principal=%s, want partial/250", inc.Status, inc.NewPrincipal)
	}
	d.Amount = inc.NewPrincipal
	d.Status = inc.Status

	if got := RemainingOf(d); !got.Equal(dec("50")) {
		t.Errorf("remaining after lifecycle = %s, want 50", got)
	}
}
