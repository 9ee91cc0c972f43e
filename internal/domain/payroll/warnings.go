package payroll

import "strings"

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Advise reports policy concerns about a computed record. The warnings are
// advisory and never change the computation.
func Advise(rec Record, region, province string) []Warning {
	var warnings []Warning
	if region == "" {
		region = rec.Region
	}
	normalized, _ := NormalizeRegion(region, province)

	if pct, ok := normalizeVacationPercent(rec.VacationPercent); ok && pct > MaxVacationPercentAdvisory {
		warnings = append(warnings, Warning{
			Code:    WarningVacationPercentHigh,
			Message: "vacation percentage exceeds 10%",
		})
	}

	jurisdiction := strings.TrimSpace(province)
	switch normalized {
	case RegionCanada:
		if jurisdiction == "" {
			jurisdiction = strings.TrimSpace(rec.Province)
		}
		if jurisdiction == "" && normalizeCode(region) != RegionQuebec {
			warnings = append(warnings, Warning{
				Code:    WarningMissingProvince,
				Message: "no province selected; using " + strings.ToUpper(DefaultProvince) + " tables",
			})
		} else if rules := Rules(region, jurisdiction); rules.Fallback {
			warnings = append(warnings, Warning{
				Code:    WarningProvinceFallback,
				Message: "unknown province " + jurisdiction + "; using " + strings.ToUpper(DefaultProvince) + " tables",
			})
		}
	case RegionUS:
		if jurisdiction == "" {
			jurisdiction = strings.TrimSpace(rec.State)
		}
		if jurisdiction == "" {
			jurisdiction = strings.TrimSpace(rec.Province)
		}
		if rules := Rules(region, jurisdiction); rules.Fallback {
			warnings = append(warnings, Warning{
				Code:    WarningStateFallback,
				Message: "unknown or missing state; using " + strings.ToUpper(DefaultState) + " tables",
			})
		}
	}

	for _, d := range incomeTaxDeductions {
		rate, amount := rec.pair(d)
		if v, ok := amount.Get(); ok && v > 0 {
			continue
		}
		if v, ok := rate.Get(); ok && v == 0 {
			warnings = append(warnings, Warning{
				Code:    WarningZeroTaxRate,
				Message: string(d) + " rate is exactly 0%",
			})
		}
	}

	for _, term := range append(rec.earningTerms(), rec.VacationPay.Float()) {
		if outOfRange(term) {
			warnings = append(warnings, Warning{
				Code:    WarningAmountOutOfRange,
				Message: "an earnings amount exceeds the supported range and was capped",
			})
			break
		}
	}

	if rec.NetPay < 0 {
		warnings = append(warnings, Warning{
			Code:    WarningNegativeNet,
			Message: "deductions exceed gross pay",
		})
	}
	return warnings
}
