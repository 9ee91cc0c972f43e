package payroll

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// Unbounded marks the open-ended top bracket.
var Unbounded = math.Inf(1)

type Bracket struct {
	UpTo float64 `json:"upTo"`
	Rate float64 `json:"rate"`
}

// MarshalJSON writes the unbounded boundary as null.
func (b Bracket) MarshalJSON() ([]byte, error) {
	out := struct {
		UpTo *float64 `json:"upTo"`
		Rate float64  `json:"rate"`
	}{Rate: b.Rate}
	if !math.IsInf(b.UpTo, 1) {
		upTo := b.UpTo
		out.UpTo = &upTo
	}
	return json.Marshal(out)
}

// BracketTable is ordered by increasing UpTo; the last entry is Unbounded.
type BracketTable []Bracket

// TaxOn applies each marginal rate to its slice of income.
func (t BracketTable) TaxOn(income float64) float64 {
	if income <= 0 || math.IsNaN(income) {
		return 0
	}
	in := dec(income)
	tax := decimal.Zero
	prev := decimal.Zero
	for _, b := range t {
		upper := in
		if !math.IsInf(b.UpTo, 1) {
			upper = decimal.Min(in, dec(b.UpTo))
		}
		slice := upper.Sub(prev)
		if !slice.IsPositive() {
			break
		}
		tax = tax.Add(slice.Mul(decimal.NewFromFloat(b.Rate)))
		if math.IsInf(b.UpTo, 1) {
			break
		}
		prev = dec(b.UpTo)
	}
	return tax.Round(2).InexactFloat64()
}

// TopRate is the rate of the unbounded bracket.
func (t BracketTable) TopRate() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Rate
}
