package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"agencycrm/internal/utils"
)

const receivablesSheet = "Receivables"

var receivablesHeader = []string{
	"Deal number", "Client", "Total", "Months elapsed", "Months remaining", "Monthly",
	"Expected to date", "Paid", "Current A/R", "Future A/R", "Next payment",
}

// ReceivablesWorkbook renders a report as an xlsx file.
func ReceivablesWorkbook(report *ReceivablesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receivablesSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(receivablesSheet, "A1", &receivablesHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(receivablesSheet, "A1", "K1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, p := range report.Contracts {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			p.DealNumber, p.ClientName, utils.Round2(p.TotalAmount), p.MonthsElapsed, p.MonthsRemaining,
			utils.Round2(p.MonthlyAmount), utils.Round2(p.ExpectedRevenueToDate), utils.Round2(p.TotalPaid),
			utils.Round2(p.CurrentAR), utils.Round2(p.FutureAR), p.NextPaymentDate.Format("2006-01-02"),
		}
		if err := f.SetSheetRow(receivablesSheet, cell, &values); err != nil {
			return nil, err
		}
		row++
	}

	s := report.Summary
	totalCell, _ := excelize.CoordinatesToCellName(1, row+1)
	totals := []any{
		"TOTAL", fmt.Sprintf("%d contracts", s.Contracts), utils.Round2(s.TotalContracted), nil, nil, nil,
		utils.Round2(s.ExpectedRevenueToDate), utils.Round2(s.TotalPaid), utils.Round2(s.CurrentAR), utils.Round2(s.FutureAR),
		"as of " + report.AsOf.Format("2006-01-02"),
	}
	if err := f.SetSheetRow(receivablesSheet, totalCell, &totals); err != nil {
		return nil, err
	}
	if row > 2 {
		last := row - 1
		if err := f.SetCellStyle(receivablesSheet, "C2", fmt.Sprintf("C%d", last), money); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(receivablesSheet, "F2", fmt.Sprintf("J%d", last), money); err != nil {
			return nil, err
		}
	}
	endCell, _ := excelize.CoordinatesToCellName(11, row+1)
	if err := f.SetCellStyle(receivablesSheet, totalCell, endCell, bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(receivablesSheet, "A", "K", 16); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
