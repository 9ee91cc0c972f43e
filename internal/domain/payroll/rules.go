package payroll

import (
	"maps"
	"slices"
	"sort"
	"strings"
)

// Bracket tables are illustrative approximations applied per pay period,
// not authoritative statutory tables.

var canadaFederal = BracketTable{
	{UpTo: 53359, Rate: 0.15},
	{UpTo: 106717, Rate: 0.205},
	{UpTo: 165430, Rate: 0.26},
	{UpTo: 235675, Rate: 0.29},
	{UpTo: Unbounded, Rate: 0.33},
}

var provincialTables = map[string]BracketTable{
	"ab": {
		{UpTo: 142292, Rate: 0.10},
		{UpTo: 170751, Rate: 0.12},
		{UpTo: 227668, Rate: 0.13},
		{UpTo: 341502, Rate: 0.14},
		{UpTo: Unbounded, Rate: 0.15},
	},
	"bc": {
		{UpTo: 45654, Rate: 0.0506},
		{UpTo: 91310, Rate: 0.077},
		{UpTo: 104835, Rate: 0.105},
		{UpTo: 127299, Rate: 0.1229},
		{UpTo: 172602, Rate: 0.147},
		{UpTo: 240716, Rate: 0.168},
		{UpTo: Unbounded, Rate: 0.205},
	},
	"mb": {
		{UpTo: 36000, Rate: 0.105},
		{UpTo: 72000, Rate: 0.1275},
		{UpTo: Unbounded, Rate: 0.174},
	},
	"nb": {
		{UpTo: 47915, Rate: 0.094},
		{UpTo: 95831, Rate: 0.14},
		{UpTo: 176756, Rate: 0.16},
		{UpTo: Unbounded, Rate: 0.195},
	},
	"nl": {
		{UpTo: 41457, Rate: 0.087},
		{UpTo: 82913, Rate: 0.145},
		{UpTo: 148027, Rate: 0.158},
		{UpTo: 207239, Rate: 0.178},
		{UpTo: Unbounded, Rate: 0.198},
	},
	"ns": {
		{UpTo: 29590, Rate: 0.0879},
		{UpTo: 59180, Rate: 0.1495},
		{UpTo: 93000, Rate: 0.1667},
		{UpTo: 150000, Rate: 0.175},
		{UpTo: Unbounded, Rate: 0.21},
	},
	"nt": {
		{UpTo: 49231, Rate: 0.059},
		{UpTo: 98463, Rate: 0.086},
		{UpTo: 153693, Rate: 0.122},
		{UpTo: Unbounded, Rate: 0.1405},
	},
	"nu": {
		{UpTo: 50000, Rate: 0.04},
		{UpTo: 100000, Rate: 0.07},
		{UpTo: 150000, Rate: 0.09},
		{UpTo: Unbounded, Rate: 0.115},
	},
	"on": {
		{UpTo: 49231, Rate: 0.0505},
		{UpTo: 98463, Rate: 0.0915},
		{UpTo: 153693, Rate: 0.1116},
		{UpTo: 220000, Rate: 0.1216},
		{UpTo: Unbounded, Rate: 0.1316},
	},
	"pe": {
		{UpTo: 31984, Rate: 0.098},
		{UpTo: 63969, Rate: 0.138},
		{UpTo: Unbounded, Rate: 0.167},
	},
	"qc": {
		{UpTo: 50000, Rate: 0.15},
		{UpTo: 100000, Rate: 0.20},
		{UpTo: 160000, Rate: 0.24},
		{UpTo: Unbounded, Rate: 0.2575},
	},
	"sk": {
		{UpTo: 49620, Rate: 0.105},
		{UpTo: 99239, Rate: 0.125},
		{UpTo: Unbounded, Rate: 0.145},
	},
	"yt": {
		{UpTo: 53359, Rate: 0.064},
		{UpTo: 106717, Rate: 0.09},
		{UpTo: 165430, Rate: 0.109},
		{UpTo: 235675, Rate: 0.128},
		{UpTo: Unbounded, Rate: 0.15},
	},
}

var usFederal = BracketTable{
	{UpTo: 11925, Rate: 0.10},
	{UpTo: 48475, Rate: 0.12},
	{UpTo: 103350, Rate: 0.22},
	{UpTo: 197300, Rate: 0.24},
	{UpTo: 250525, Rate: 0.32},
	{UpTo: 626350, Rate: 0.35},
	{UpTo: Unbounded, Rate: 0.37},
}

var stateTables = map[string]BracketTable{
	"ca": {
		{UpTo: 10756, Rate: 0.01},
		{UpTo: 25499, Rate: 0.02},
		{UpTo: 40245, Rate: 0.04},
		{UpTo: 55866, Rate: 0.06},
		{UpTo: 70606, Rate: 0.08},
		{UpTo: 360659, Rate: 0.093},
		{UpTo: 432787, Rate: 0.103},
		{UpTo: 721314, Rate: 0.113},
		{UpTo: Unbounded, Rate: 0.123},
	},
	"fl": {{UpTo: Unbounded, Rate: 0}},
	"il": {{UpTo: Unbounded, Rate: 0.0495}},
	"ma": {
		{UpTo: 1083150, Rate: 0.05},
		{UpTo: Unbounded, Rate: 0.09},
	},
	"ny": {
		{UpTo: 8500, Rate: 0.04},
		{UpTo: 11700, Rate: 0.045},
		{UpTo: 13900, Rate: 0.0525},
		{UpTo: 80650, Rate: 0.055},
		{UpTo: 215400, Rate: 0.06},
		{UpTo: 1077550, Rate: 0.0685},
		{UpTo: 5000000, Rate: 0.0965},
		{UpTo: 25000000, Rate: 0.103},
		{UpTo: Unbounded, Rate: 0.109},
	},
	"pa": {{UpTo: Unbounded, Rate: 0.0307}},
	"tx": {{UpTo: Unbounded, Rate: 0}},
	"wa": {{UpTo: Unbounded, Rate: 0}},
}

// Flat statutory rates, in percentage points.
var (
	canadaRates = map[Deduction]float64{
		DeductionCPP: 5.95,
		DeductionEI:  1.66,
	}
	quebecRates = map[Deduction]float64{
		DeductionQPP:  6.40,
		DeductionEI:   1.32,
		DeductionRQAP: 0.767,
	}
	usRates = map[Deduction]float64{
		DeductionFICA:     6.2,
		DeductionMedicare: 1.45,
	}
)

// RuleSet is the read-only view of the tables that apply to one
// region/jurisdiction pair.
type RuleSet struct {
	Region       string
	Jurisdiction string
	// Fallback is true when the requested province or state was unknown
	// and the default jurisdiction was substituted.
	Fallback     bool
	Federal      BracketTable
	SubNational  BracketTable
	DefaultRates map[Deduction]float64
}

// DefaultRate is the regional rate used when a deduction has neither a rate
// nor an amount. Deductions that do not apply to the region return 0.
func (rs RuleSet) DefaultRate(d Deduction) float64 {
	return rs.DefaultRates[d]
}

// ProvincialTable returns a copy of the bracket table for a Canadian
// province code, falling back to Ontario.
func ProvincialTable(code string) (BracketTable, string, bool) {
	key := normalizeCode(code)
	if table, ok := provincialTables[key]; ok {
		return slices.Clone(table), key, false
	}
	return slices.Clone(provincialTables[DefaultProvince]), DefaultProvince, true
}

// StateTable returns a copy of the bracket table for a US state code,
// falling back to New York.
func StateTable(code string) (BracketTable, string, bool) {
	key := normalizeCode(code)
	if table, ok := stateTables[key]; ok {
		return slices.Clone(table), key, false
	}
	return slices.Clone(stateTables[DefaultState]), DefaultState, true
}

// NormalizeRegion lower-cases the region and expands the Québec alias.
// Anything that is not Canada or the US is the generic region.
func NormalizeRegion(region, province string) (string, string) {
	r := normalizeCode(region)
	switch r {
	case RegionCanada, RegionUS:
		return r, province
	case RegionQuebec:
		return RegionCanada, RegionQuebec
	default:
		return RegionGeneric, province
	}
}

// Rules resolves the rule set for a region and province/state code.
func Rules(region, jurisdiction string) RuleSet {
	region, jurisdiction = NormalizeRegion(region, jurisdiction)
	switch region {
	case RegionCanada:
		table, key, fallback := ProvincialTable(jurisdiction)
		rates := canadaRates
		if key == RegionQuebec {
			rates = quebecRates
		}
		return RuleSet{
			Region:       region,
			Jurisdiction: key,
			Fallback:     fallback,
			Federal:      slices.Clone(canadaFederal),
			SubNational:  table,
			DefaultRates: maps.Clone(rates),
		}
	case RegionUS:
		table, key, fallback := StateTable(jurisdiction)
		return RuleSet{
			Region:       region,
			Jurisdiction: key,
			Fallback:     fallback,
			Federal:      slices.Clone(usFederal),
			SubNational:  table,
			DefaultRates: maps.Clone(usRates),
		}
	default:
		return RuleSet{Region: RegionGeneric}
	}
}

// Catalog lists the jurisdictions with their tables for display.
type Catalog struct {
	CanadaFederal BracketTable                     `json:"canadaFederal"`
	Provinces     map[string]BracketTable          `json:"provinces"`
	USFederal     BracketTable                     `json:"usFederal"`
	States        map[string]BracketTable          `json:"states"`
	Rates         map[string]map[Deduction]float64 `json:"rates"`
	Defaults      map[string]string                `json:"defaults"`
	BPA           map[PayFrequency]float64         `json:"bpa"`
}

// RuleCatalog returns a deep copy of every table; editing it never affects
// later calculations.
func RuleCatalog() Catalog {
	return Catalog{
		CanadaFederal: slices.Clone(canadaFederal),
		Provinces:     cloneTables(provincialTables),
		USFederal:     slices.Clone(usFederal),
		States:        cloneTables(stateTables),
		Rates: map[string]map[Deduction]float64{
			RegionCanada: maps.Clone(canadaRates),
			RegionQuebec: maps.Clone(quebecRates),
			RegionUS:     maps.Clone(usRates),
		},
		Defaults: map[string]string{
			RegionCanada: DefaultProvince,
			RegionUS:     DefaultState,
		},
		BPA: map[PayFrequency]float64{
			FrequencyWeekly:   BasicPersonalAmount(FrequencyWeekly),
			FrequencyBiweekly: BasicPersonalAmount(FrequencyBiweekly),
			FrequencyMonthly:  BasicPersonalAmount(FrequencyMonthly),
		},
	}
}

func cloneTables(src map[string]BracketTable) map[string]BracketTable {
	out := make(map[string]BracketTable, len(src))
	for code, table := range src {
		out[code] = slices.Clone(table)
	}
	return out
}

// ProvinceCodes returns the supported Canadian province codes, sorted.
func ProvinceCodes() []string {
	return sortedKeys(provincialTables)
}

// StateCodes returns the supported US state codes, sorted.
func StateCodes() []string {
	return sortedKeys(stateTables)
}

func sortedKeys(m map[string]BracketTable) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
