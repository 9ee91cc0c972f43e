package payroll

const overtimeMultiplier = 1.5

type Overtime struct {
	Threshold     float64 `json:"threshold"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	RegularPay    float64 `json:"regular_pay"`
	OvertimePay   float64 `json:"overtime_pay"`
	GrossPay      float64 `json:"gross_pay"`
}

// OvertimeThreshold is the weekly hour count after which overtime applies.
// Canada uses 44 hours except in Québec and Manitoba; everywhere else is 40.
func OvertimeThreshold(region, province string) float64 {
	region, province = NormalizeRegion(region, province)
	if region != RegionCanada {
		return 40
	}
	switch normalizeCode(province) {
	case "qc", "mb":
		return 40
	default:
		return 44
	}
}

// SplitOvertime divides hours into regular and overtime portions. It is an
// informational breakdown; Compute keeps gross at hours×rate.
func SplitOvertime(hours, rate float64, region, province string) Overtime {
	hours = max(0, Coerce(hours))
	rate = Coerce(rate)
	threshold := OvertimeThreshold(region, province)

	regularHours := min(hours, threshold)
	overtimeHours := max(0, hours-threshold)
	regularPay := dec(regularHours).Mul(dec(rate))
	overtimePay := dec(overtimeHours).Mul(dec(rate)).Mul(dec(overtimeMultiplier))

	return Overtime{
		Threshold:     threshold,
		RegularHours:  Round2(regularHours),
		OvertimeHours: Round2(overtimeHours),
		RegularPay:    regularPay.Round(2).InexactFloat64(),
		OvertimePay:   overtimePay.Round(2).InexactFloat64(),
		GrossPay:      regularPay.Add(overtimePay).Round(2).InexactFloat64(),
	}
}
