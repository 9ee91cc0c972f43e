package payroll

import (
	"math"

	"github.com/shopspring/decimal"
)

// Record is the payroll value object handed between the engine and its
// callers. Field names match the persisted snake_case keys.
type Record struct {
	RecruiterID    string `json:"recruiter_id,omitempty"`
	PayPeriodStart string `json:"pay_period_start,omitempty"`
	PayPeriodEnd   string `json:"pay_period_end,omitempty"`
	PayFrequency   string `json:"pay_frequency,omitempty"`
	Region         string `json:"region,omitempty"`
	Province       string `json:"province,omitempty"`
	State          string `json:"state,omitempty"`

	HoursWorked       Num `json:"hours_worked"`
	Rate              Num `json:"rate"`
	Bonus             Num `json:"bonus"`
	Commission        Num `json:"commission"`
	Tip               Num `json:"tip"`
	ParentalInsurance Num `json:"parental_insurance"`
	TravelAllowance   Num `json:"travel_allowance"`
	FamilyBonus       Num `json:"family_bonus"`
	TaxCredit         Num `json:"tax_credit"`

	VacationPercent Optional `json:"vacation_percent,omitzero"`
	VacationPay     Num      `json:"vacation_pay"`

	CPP            Optional `json:"cpp,omitzero"`
	CPPAmount      Optional `json:"cpp_amount,omitzero"`
	QPP            Optional `json:"qpp,omitzero"`
	QPPAmount      Optional `json:"qpp_amount,omitzero"`
	EI             Optional `json:"ei,omitzero"`
	EIAmount       Optional `json:"ei_amount,omitzero"`
	RQAP           Optional `json:"rqap,omitzero"`
	RQAPAmount     Optional `json:"rqap_amount,omitzero"`
	FICA           Optional `json:"fica,omitzero"`
	FICAAmount     Optional `json:"fica_amount,omitzero"`
	Medicare       Optional `json:"medicare,omitzero"`
	MedicareAmount Optional `json:"medicare_amount,omitzero"`

	FederalTax               Optional `json:"federal_tax,omitzero"`
	FederalTaxAmount         Optional `json:"federal_tax_amount,omitzero"`
	FederalTaxAppliedRate    Num      `json:"federal_tax_applied_rate"`
	ProvincialTax            Optional `json:"provincial_tax,omitzero"`
	ProvincialTaxAmount      Optional `json:"provincial_tax_amount,omitzero"`
	ProvincialTaxAppliedRate Num      `json:"provincial_tax_applied_rate"`
	StateTax                 Optional `json:"state_tax,omitzero"`
	StateTaxAmount           Optional `json:"state_tax_amount,omitzero"`
	StateTaxAppliedRate      Num      `json:"state_tax_applied_rate"`

	RetirementAmount Num `json:"retirement_amount"`
	MedicalInsurance Num `json:"medical_insurance"`
	DentalInsurance  Num `json:"dental_insurance"`
	LifeInsurance    Num `json:"life_insurance"`
	Deduction        Num `json:"deduction"`

	GrossPay        Num             `json:"gross_pay"`
	TaxableIncome   Num             `json:"taxable_income"`
	TaxAmount       Num             `json:"tax_amount"`
	TotalDeductions Num             `json:"total_deductions"`
	NetPay          Num             `json:"net_pay"`
	EmployerContrib EmployerContrib `json:"employer_contrib"`
}

// EmployerContrib is reported for compliance only and never reduces net pay.
type EmployerContrib struct {
	CPP       Num `json:"cpp"`
	QPP       Num `json:"qpp"`
	EI        Num `json:"ei"`
	RQAP      Num `json:"rqap"`
	FICA      Num `json:"fica"`
	Medicare  Num `json:"medicare"`
	Insurance Num `json:"insurance"`
	Total     Num `json:"total"`
}

// BaseEarnings is hours×rate plus every additive compensation field,
// excluding vacation pay. Each term is clamped to ±MaxAmount.
func (r Record) BaseEarnings() float64 {
	return sum(r.earningTerms()...)
}

func (r Record) earningTerms() []float64 {
	return []float64{
		r.hourlyPay(),
		r.Bonus.Float(),
		r.Commission.Float(),
		r.Tip.Float(),
		r.ParentalInsurance.Float(),
		r.TravelAllowance.Float(),
		r.FamilyBonus.Float(),
		r.TaxCredit.Float(),
	}
}

// hourlyPay is the exact hours×rate product before clamping, so an
// overflow shows up as ±Inf rather than vanishing.
func (r Record) hourlyPay() float64 {
	hours, rate := r.HoursWorked.Float(), r.Rate.Float()
	if !finite(hours) || !finite(rate) {
		if p := hours * rate; !math.IsNaN(p) {
			return p
		}
		return 0
	}
	return decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(rate)).InexactFloat64()
}

// pair returns pointers to the rate and amount fields of a deduction.
func (r *Record) pair(d Deduction) (*Optional, *Optional) {
	switch d {
	case DeductionCPP:
		return &r.CPP, &r.CPPAmount
	case DeductionQPP:
		return &r.QPP, &r.QPPAmount
	case DeductionEI:
		return &r.EI, &r.EIAmount
	case DeductionRQAP:
		return &r.RQAP, &r.RQAPAmount
	case DeductionFICA:
		return &r.FICA, &r.FICAAmount
	case DeductionMedicare:
		return &r.Medicare, &r.MedicareAmount
	case DeductionFederalTax:
		return &r.FederalTax, &r.FederalTaxAmount
	case DeductionProvincialTax:
		return &r.ProvincialTax, &r.ProvincialTaxAmount
	case DeductionStateTax:
		return &r.StateTax, &r.StateTaxAmount
	}
	return nil, nil
}
