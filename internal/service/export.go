package service

import (
	"context"
	"fmt"

	"github.com/beevik/etree"

	"github.com/debttrack/debt-service/internal/models"
	"github.com/debttrack/debt-service/internal/reconcile"
)

const spreadsheetNS = "urn:schemas-microsoft-com:office:spreadsheet"

// ExportDebts renders the user's ledger as a SpreadsheetML (Excel XML)
// workbook: one row per debt plus a totals row.
func (s *Service) ExportDebts(ctx context.Context, userID int64) ([]byte, error) {
	debts, err := s.repo.ListDebts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := buildDebtsWorkbook(debts)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Exported %d debts for user %d", len(debts), userID)
	return out, nil
}

func buildDebtsWorkbook(debts []models.Debt) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateProcInst("mso-application", `progid="Excel.Sheet"`)

	workbook := doc.CreateElement("Workbook")
	workbook.CreateAttr("xmlns", spreadsheetNS)
	workbook.CreateAttr("xmlns:ss", spreadsheetNS)

	worksheet := workbook.CreateElement("Worksheet")
	worksheet.CreateAttr("ss:Name", "Debts")
	table := worksheet.CreateElement("Table")

	addRow(table, "String", "Customer", "Phone", "Principal", "Paid", "Remaining", "Status", "Due Date", "Created")
	for _, d := range debts {
		dueDate := ""
		if d.DueDate != nil {
			dueDate = d.DueDate.Format("2006-01-02")
		}
		row := table.CreateElement("Row")
		addCell(row, "String", d.CustomerName)
		addCell(row, "String", d.Phone)
		addCell(row, "Number", d.Amount.StringFixed(2))
		addCell(row, "Number", d.TotalPaid.StringFixed(2))
		addCell(row, "Number", d.Remaining.StringFixed(2))
		addCell(row, "String", string(d.Status))
		addCell(row, "String", dueDate)
		addCell(row, "String", d.CreatedAt.Format("2006-01-02"))
	}

	stats := reconcile.Stats(debts)
	totals := table.CreateElement("Row")
	addCell(totals, "String", "Totals")
	addCell(totals, "Number", fmt.Sprintf("%d", stats.Count))
	addCell(totals, "Number", stats.Total.StringFixed(2))
	addCell(totals, "Number", stats.PaidTotal.StringFixed(2))
	addCell(totals, "Number", stats.PendingTotal.StringFixed(2))
	addCell(totals, "Number", fmt.Sprintf("%d", stats.OverdueCount))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return out, nil
}

func addRow(table *etree.Element, cellType string, values ...string) {
	row := table.CreateElement("Row")
	for _, v := range values {
		addCell(row, cellType, v)
	}
}

func addCell(row *etree.Element, cellType, value string) {
	data := row.CreateElement("Cell").CreateElement("Data")
	data.CreateAttr("ss:Type", cellType)
	data.SetText(value)
}
