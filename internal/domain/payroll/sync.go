package payroll

import "fmt"

// SyncDeductionField updates one rate field and its paired amount without a
// full Compute pass. Income-tax rates apply to taxable income, every other
// rate applies to gross pay. Nothing else in the record changes.
func SyncDeductionField(field string, value any, rec Record) (Record, error) {
	d, ok := ParseDeduction(field)
	if !ok {
		return rec, fmt.Errorf("%w: %q", ErrUnknownDeductionField, field)
	}

	gross, taxable := syncBases(rec)
	base := gross
	if d.IsIncomeTax() {
		base = taxable
	}

	pct := Coerce(value)
	out := rec
	rate, amount := out.pair(d)
	*rate = Some(pct)
	*amount = Some(PctToAmount(base, pct))
	return out, nil
}

func syncBases(rec Record) (gross, taxable float64) {
	base := rec.BaseEarnings()
	vacation := rec.VacationPay.Float()
	if pct, ok := normalizeVacationPercent(rec.VacationPercent); ok {
		vacation = PctToAmount(base, pct)
	}
	gross = Round2(sum(base, vacation))
	bpa := BasicPersonalAmount(ParsePayFrequency(rec.PayFrequency))
	taxable = Round2(max(0, sum(gross, -bpa)))
	return gross, taxable
}
