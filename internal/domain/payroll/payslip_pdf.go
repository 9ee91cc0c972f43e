package payroll

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

type payslipLine struct {
	label  string
	amount float64
}

// RenderPayslip draws a one-page payslip for a saved record.
func RenderPayslip(saved SavedRecord) ([]byte, error) {
	rec := Record{}
	if saved.Record != nil {
		rec = *saved.Record
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+saved.ID, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Record: %s", saved.ID))
	pdf.Ln(6)
	if saved.RecruiterID != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Recruiter: %s", saved.RecruiterID))
		pdf.Ln(6)
	}
	if saved.PayPeriodStart != "" || saved.PayPeriodEnd != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", saved.PayPeriodStart, saved.PayPeriodEnd))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Region: %s", strings.ToUpper(strings.TrimSpace(saved.Region+" "+saved.Province))))
	pdf.Ln(10)

	section(pdf, "Earnings", []payslipLine{
		{"Hours x rate", Round2(rec.HoursWorked.Float() * rec.Rate.Float())},
		{"Bonus", rec.Bonus.Float()},
		{"Commission", rec.Commission.Float()},
		{"Tips", rec.Tip.Float()},
		{"Parental insurance", rec.ParentalInsurance.Float()},
		{"Travel allowance", rec.TravelAllowance.Float()},
		{"Family bonus", rec.FamilyBonus.Float()},
		{"Tax credit", rec.TaxCredit.Float()},
		{"Vacation pay", rec.VacationPay.Float()},
	}, payslipLine{"Gross pay", saved.Gross})

	section(pdf, "Deductions", []payslipLine{
		{"CPP", rec.CPPAmount.Value()},
		{"QPP", rec.QPPAmount.Value()},
		{"EI", rec.EIAmount.Value()},
		{"RQAP", rec.RQAPAmount.Value()},
		{"FICA", rec.FICAAmount.Value()},
		{"Medicare", rec.MedicareAmount.Value()},
		{"Federal tax", rec.FederalTaxAmount.Value()},
		{"Provincial tax", rec.ProvincialTaxAmount.Value()},
		{"State tax", rec.StateTaxAmount.Value()},
		{"Retirement", rec.RetirementAmount.Float()},
		{"Medical insurance", rec.MedicalInsurance.Float()},
		{"Dental insurance", rec.DentalInsurance.Float()},
		{"Life insurance", rec.LifeInsurance.Float()},
		{"Other", rec.Deduction.Float()},
	}, payslipLine{"Total deductions", saved.Deductions})

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, fmt.Sprintf("%.2f", saved.Net), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	if total := rec.EmployerContrib.Total.Float(); total > 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 6, fmt.Sprintf("Employer contributions (not deducted): %.2f", total))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

// section prints the non-zero lines followed by a bold total.
func section(pdf *gofpdf.Fpdf, title string, lines []payslipLine, total payslipLine) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		if line.amount == 0 {
			continue
		}
		pdf.CellFormat(120, 6, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", line.amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, total.label, "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, fmt.Sprintf("%.2f", total.amount), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
}
