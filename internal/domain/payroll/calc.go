package payroll

// Basis is the resolved source of one deduction: an explicit amount, an
// explicit rate, or neither.
type Basis struct {
	Kind  BasisKind
	Value float64
}

type BasisKind int

const (
	BasisUnset BasisKind = iota
	BasisRate
	BasisAmount
)

// statutoryBasis applies "amount wins over rate" to a payroll-style pair.
func statutoryBasis(rate, amount Optional) Basis {
	if v, ok := amount.Get(); ok {
		return Basis{Kind: BasisAmount, Value: v}
	}
	if v, ok := rate.Get(); ok {
		return Basis{Kind: BasisRate, Value: v}
	}
	return Basis{Kind: BasisUnset}
}

// incomeTaxBasis only honours a positive amount; a zero amount falls through
// to the rate and then to the bracket table.
func incomeTaxBasis(rate, amount Optional) Basis {
	if v, ok := amount.Get(); ok && v > 0 {
		return Basis{Kind: BasisAmount, Value: v}
	}
	if v, ok := rate.Get(); ok {
		return Basis{Kind: BasisRate, Value: v}
	}
	return Basis{Kind: BasisUnset}
}

// normalizeVacationPercent returns the canonical percentage-point value.
// Values in (0,1) are legacy fractions and are scaled once; values outside
// (0,100] mean no percentage was given.
func normalizeVacationPercent(o Optional) (float64, bool) {
	v, ok := o.Get()
	if !ok || v <= 0 {
		return 0, false
	}
	if v < 1 {
		v = dec(v).Mul(hundred).InexactFloat64()
	}
	if v > 100 {
		return 0, false
	}
	return v, true
}

// Compute returns a fully reconciled copy of rec. It never fails: invalid
// input has already been coerced to zero by the record's decoders.
func Compute(rec Record, region, province string) Record {
	out := rec
	rules := resolveRules(rec, region, province)

	base := rec.BaseEarnings()

	vacation := Round2(rec.VacationPay.Float())
	if pct, ok := normalizeVacationPercent(rec.VacationPercent); ok {
		vacation = PctToAmount(base, pct)
		out.VacationPercent = Some(pct)
	}
	out.VacationPay = Num(vacation)

	gross := Round2(sum(base, vacation))
	bpa := BasicPersonalAmount(ParsePayFrequency(rec.PayFrequency))
	taxable := Round2(max(0, sum(gross, -bpa)))
	out.GrossPay = Num(gross)
	out.TaxableIncome = Num(taxable)

	statutory := make(map[Deduction]float64, len(statutoryDeductions))
	for _, d := range statutoryDeductions {
		rate, amount := rec.pair(d)
		var value float64
		switch b := statutoryBasis(*rate, *amount); b.Kind {
		case BasisAmount:
			value = Round2(b.Value)
		case BasisRate:
			value = PctToAmount(gross, b.Value)
		default:
			value = PctToAmount(gross, rules.DefaultRate(d))
		}
		statutory[d] = value
		_, outAmount := out.pair(d)
		*outAmount = Some(value)
	}

	federal, federalRate := incomeTax(rec.FederalTax, rec.FederalTaxAmount, taxable, rules.Federal)
	var provincialTable, stateTable BracketTable
	switch rules.Region {
	case RegionCanada:
		provincialTable = rules.SubNational
	case RegionUS:
		stateTable = rules.SubNational
	}
	provincial, provincialRate := incomeTax(rec.ProvincialTax, rec.ProvincialTaxAmount, taxable, provincialTable)
	state, stateRate := incomeTax(rec.StateTax, rec.StateTaxAmount, taxable, stateTable)
	out.FederalTaxAmount = Some(federal)
	out.FederalTaxAppliedRate = Num(federalRate)
	out.ProvincialTaxAmount = Some(provincial)
	out.ProvincialTaxAppliedRate = Num(provincialRate)
	out.StateTaxAmount = Some(state)
	out.StateTaxAppliedRate = Num(stateRate)
	out.TaxAmount = Num(Round2(sum(federal, provincial, state)))

	out.RetirementAmount = Num(Round2(rec.RetirementAmount.Float()))
	out.MedicalInsurance = Num(Round2(rec.MedicalInsurance.Float()))
	out.DentalInsurance = Num(Round2(rec.DentalInsurance.Float()))
	out.LifeInsurance = Num(Round2(rec.LifeInsurance.Float()))
	out.Deduction = Num(Round2(rec.Deduction.Float()))

	total := Round2(sum(
		statutory[DeductionCPP],
		statutory[DeductionQPP],
		statutory[DeductionEI],
		statutory[DeductionRQAP],
		statutory[DeductionFICA],
		statutory[DeductionMedicare],
		federal,
		provincial,
		state,
		out.RetirementAmount.Float(),
		out.MedicalInsurance.Float(),
		out.DentalInsurance.Float(),
		out.LifeInsurance.Float(),
		out.Deduction.Float(),
	))
	out.TotalDeductions = Num(total)
	out.NetPay = Num(Round2(sum(gross, -total)))

	insurance := Round2(sum(out.MedicalInsurance.Float(), out.DentalInsurance.Float(), out.LifeInsurance.Float()))
	out.EmployerContrib = EmployerContrib{
		CPP:       Num(statutory[DeductionCPP]),
		QPP:       Num(statutory[DeductionQPP]),
		EI:        Num(statutory[DeductionEI]),
		RQAP:      Num(statutory[DeductionRQAP]),
		FICA:      Num(statutory[DeductionFICA]),
		Medicare:  Num(statutory[DeductionMedicare]),
		Insurance: Num(insurance),
		Total: Num(Round2(sum(
			statutory[DeductionCPP],
			statutory[DeductionQPP],
			statutory[DeductionEI],
			statutory[DeductionRQAP],
			statutory[DeductionFICA],
			statutory[DeductionMedicare],
			insurance,
		))),
	}
	return out
}

// incomeTax resolves one income-tax deduction and the rate actually applied,
// in percentage points of taxable income. A nil table means no bracket
// schedule applies, so an unset basis yields zero.
func incomeTax(rate, amount Optional, taxable float64, table BracketTable) (float64, float64) {
	var value float64
	switch b := incomeTaxBasis(rate, amount); b.Kind {
	case BasisAmount:
		value = Round2(b.Value)
		// A previously computed amount keeps reporting the rate it came from.
		if r, ok := rate.Get(); ok && PctToAmount(taxable, r) == value {
			return value, r
		}
	case BasisRate:
		return PctToAmount(taxable, b.Value), b.Value
	default:
		if table == nil {
			return 0, 0
		}
		value = table.TaxOn(taxable)
	}
	return value, effectiveRate(value, taxable)
}

func effectiveRate(amount, taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}
	return dec(amount).Div(dec(taxable)).Mul(hundred).Round(2).InexactFloat64()
}

// resolveRules picks the jurisdiction: the explicit argument first, then the
// record's own province (Canada) or state (US).
func resolveRules(rec Record, region, jurisdiction string) RuleSet {
	if region == "" {
		region = rec.Region
	}
	normalized, _ := NormalizeRegion(region, jurisdiction)
	if jurisdiction == "" {
		switch normalized {
		case RegionCanada:
			jurisdiction = rec.Province
		case RegionUS:
			jurisdiction = rec.State
			if jurisdiction == "" {
				jurisdiction = rec.Province
			}
		}
	}
	return Rules(region, jurisdiction)
}
