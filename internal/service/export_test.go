package service

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/debttrack/debt-service/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildDebtsWorkbook(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	debts := []models.Debt{
		{
			CustomerName: "Alice Mwangi",
			Phone:        "+254700000001",
			Amount:       dec("100.00"),
			TotalPaid:    dec("40.00"),
			Remaining:    dec("60.00"),
			Status:       models.StatusPartial,
			DueDate:      &due,
			CreatedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			CustomerName: "Bob Otieno",
			Phone:        "+254700000002",
			Amount:       dec("50.00"),
			TotalPaid:    dec("0"),
			Remaining:    dec("50.00"),
			Status:       models.StatusPending,
			CreatedAt:    time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	out, err := buildDebtsWorkbook(debts)
	if err != nil {
		t.Fatalf("buildDebtsWorkbook failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("workbook is not well-formed XML: %v", err)
	}

	rows := doc.FindElements("//Worksheet/Table/Row")
	// header + one row per debt + totals
	if len(rows) != 4 {
		t.Fatalf("row count = %d, want 4", len(rows))
	}

	firstData := rows[1].FindElements("./Cell/Data")
	if got := firstData[0].Text(); got != "Alice Mwangi" {
		t.Errorf("first data cell = %q, want customer name", got)
	}
	if got := firstData[4].Text(); got != "60.00" {
		t.Errorf("remaining cell = %q, want 60.00", got)
	}
	if got := firstData[6].Text(); got != "2026-09-15" {
		t.Errorf("due date cell = %q, want 2026-09-15", got)
	}

	totals := rows[3].FindElements("./Cell/Data")
	if got := totals[1].Text(); got != "2" {
		t.Errorf("totals count cell = %q, want 2", got)
	}
	if got := totals[2].Text(); got != "150.00" {
		t.Errorf("totals principal cell = %q, want 150.00", got)
	}
	if got := totals[4].Text(); got != "110.00" {
		t.Errorf("totals pending cell = %q, want 110.00", got)
	}
}

func TestBuildDebtsWorkbookEmpty(t *testing.T) {
	out, err := buildDebtsWorkbook(nil)
	if err != nil {
		t.Fatalf("buildDebtsWorkbook failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("workbook is not well-formed XML: %v", err)
	}
	rows := doc.FindElements("//Worksheet/Table/Row")
	// header + totals only
	if len(rows) != 2 {
		t.Errorf("row count = %d, want 2", len(rows))
	}
}
