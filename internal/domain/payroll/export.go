package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

var registerHeaders = []string{
	"ID", "Recruiter", "Region", "Province", "Period Start", "Period End",
	"Gross", "Deductions", "Net", "Created At",
}

// WriteRegisterXLSX writes saved records as a single-sheet workbook with a
// totals row under the amount columns.
func WriteRegisterXLSX(w io.Writer, rows []RegisterRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}
	total, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 2})
	if err != nil {
		return err
	}

	for i, title := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(registerSheet, cell, title); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(registerSheet, 1, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		line := i + 2
		values := []any{
			row.ID, row.RecruiterID, row.Region, row.Province, row.PayPeriodStart, row.PayPeriodEnd,
			row.Gross, row.Deductions, row.Net, row.CreatedAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(registerSheet, cell, &values); err != nil {
			return err
		}
	}

	last := len(rows) + 1
	totals := last + 1
	if err := f.SetCellValue(registerSheet, fmt.Sprintf("A%d", totals), "Total"); err != nil {
		return err
	}
	for _, col := range []string{"G", "H", "I"} {
		formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, last)
		if last < 2 {
			formula = "0"
		}
		if err := f.SetCellFormula(registerSheet, fmt.Sprintf("%s%d", col, totals), formula); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(registerSheet, totals, totals, total); err != nil {
		return err
	}
	if last >= 2 {
		if err := f.SetCellStyle(registerSheet, "G2", fmt.Sprintf("I%d", last), money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(registerSheet, "A", "A", 38); err != nil {
		return err
	}

	return f.Write(w)
}
