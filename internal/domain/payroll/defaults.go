package payroll

import "netpay/internal/domain/templates"

// ApplyTemplate fills recurring fields the record leaves empty. Parental
// insurance is a Canadian top-up and is skipped elsewhere.
func ApplyTemplate(rec Record, tpl templates.Template, region string) Record {
	out := rec
	fill := func(field *Num, value float64) {
		if field.Float() == 0 && value != 0 {
			*field = Num(Coerce(value))
		}
	}
	fill(&out.MedicalInsurance, tpl.MedicalInsurance)
	fill(&out.DentalInsurance, tpl.DentalInsurance)
	fill(&out.LifeInsurance, tpl.LifeInsurance)
	fill(&out.RetirementAmount, tpl.RetirementAmount)
	fill(&out.Deduction, tpl.Deduction)

	if r, _ := NormalizeRegion(region, ""); r == RegionCanada {
		fill(&out.ParentalInsurance, tpl.ParentalInsurance)
	}

	if v, ok := out.VacationPercent.Get(); (!ok || v == 0) && tpl.VacationPercent > 0 {
		out.VacationPercent = Some(tpl.VacationPercent)
	}
	return out
}
