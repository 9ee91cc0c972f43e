package payroll

import "slices"

const (
	RegionCanada  = "ca"
	RegionUS      = "us"
	RegionQuebec  = "qc"
	RegionGeneric = "global"

	DefaultProvince = "on"
	DefaultState    = "ny"

	BPAAnnual = 15000

	MaxVacationPercentAdvisory = 10

	WarningVacationPercentHigh = "vacation_percent_high"
	WarningMissingProvince     = "missing_province"
	WarningProvinceFallback    = "province_fallback"
	WarningStateFallback       = "state_fallback"
	WarningZeroTaxRate         = "zero_tax_rate"
	WarningNegativeNet         = "negative_net"
	WarningAmountOutOfRange    = "amount_out_of_range"

	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// Deduction names a rate/amount pair. The string is the rate field's key;
// the amount key is the same name with an "_amount" suffix.
type Deduction string

const (
	DeductionCPP           Deduction = "cpp"
	DeductionQPP           Deduction = "qpp"
	DeductionEI            Deduction = "ei"
	DeductionRQAP          Deduction = "rqap"
	DeductionFICA          Deduction = "fica"
	DeductionMedicare      Deduction = "medicare"
	DeductionFederalTax    Deduction = "federal_tax"
	DeductionProvincialTax Deduction = "provincial_tax"
	DeductionStateTax      Deduction = "state_tax"
)

// statutoryDeductions are payroll-style deductions computed on gross pay.
var statutoryDeductions = []Deduction{
	DeductionCPP,
	DeductionQPP,
	DeductionEI,
	DeductionRQAP,
	DeductionFICA,
	DeductionMedicare,
}

// incomeTaxDeductions are computed on taxable income.
var incomeTaxDeductions = []Deduction{
	DeductionFederalTax,
	DeductionProvincialTax,
	DeductionStateTax,
}

// StatutoryDeductions returns the deductions computed on gross pay.
func StatutoryDeductions() []Deduction {
	return slices.Clone(statutoryDeductions)
}

// IncomeTaxDeductions returns the deductions computed on taxable income.
func IncomeTaxDeductions() []Deduction {
	return slices.Clone(incomeTaxDeductions)
}

func (d Deduction) AmountField() string {
	return string(d) + "_amount"
}

func (d Deduction) IsIncomeTax() bool {
	switch d {
	case DeductionFederalTax, DeductionProvincialTax, DeductionStateTax:
		return true
	}
	return false
}

// ParseDeduction recognizes the rate field names accepted by the synchronizer.
func ParseDeduction(field string) (Deduction, bool) {
	d := Deduction(field)
	switch d {
	case DeductionCPP, DeductionQPP, DeductionEI, DeductionRQAP, DeductionFICA, DeductionMedicare,
		DeductionFederalTax, DeductionProvincialTax, DeductionStateTax:
		return d, true
	}
	return "", false
}
