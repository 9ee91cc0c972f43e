package payroll

import "strings"

type PayFrequency string

const (
	FrequencyWeekly   PayFrequency = "weekly"
	FrequencyBiweekly PayFrequency = "biweekly"
	FrequencyMonthly  PayFrequency = "monthly"
)

// ParsePayFrequency never fails: anything unrecognized is weekly.
func ParsePayFrequency(raw string) PayFrequency {
	switch PayFrequency(strings.ToLower(strings.TrimSpace(raw))) {
	case FrequencyBiweekly:
		return FrequencyBiweekly
	case FrequencyMonthly:
		return FrequencyMonthly
	default:
		return FrequencyWeekly
	}
}

func (f PayFrequency) PeriodsPerYear() int {
	switch f {
	case FrequencyBiweekly:
		return 26
	case FrequencyMonthly:
		return 12
	default:
		return 52
	}
}

// BasicPersonalAmount is the tax-exempt threshold for one pay period.
func BasicPersonalAmount(f PayFrequency) float64 {
	return dec(BPAAnnual).Div(dec(float64(f.PeriodsPerYear()))).Round(2).InexactFloat64()
}
