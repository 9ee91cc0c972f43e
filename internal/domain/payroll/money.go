package payroll

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount bounds every value that enters money arithmetic. Larger
// magnitudes, including ±Inf from an overflowed product, are clamped to it.
const MaxAmount = 1e12

// Coerce turns any loosely typed input into a finite float64. Anything that
// cannot be read as a number becomes 0.
func Coerce(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case Num:
		f = float64(t)
	case Optional:
		f = t.Value()
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return dec(v).Round(2).InexactFloat64()
}

// PctToAmount applies a percentage (in points) to base, rounded to cents.
func PctToAmount(base, pct float64) float64 {
	return dec(base).Mul(dec(pct)).Div(hundred).Round(2).InexactFloat64()
}

func sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(dec(v))
	}
	return total.InexactFloat64()
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(clampAmount(v))
}

func clampAmount(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > MaxAmount:
		return MaxAmount
	case v < -MaxAmount:
		return -MaxAmount
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// outOfRange reports whether v reached the clamp applied by dec.
func outOfRange(v float64) bool {
	return math.IsInf(v, 0) || math.Abs(v) >= MaxAmount
}

// Num is a currency or quantity field read through Coerce.
type Num float64

func (n *Num) UnmarshalJSON(data []byte) error {
	*n = Num(coerceRaw(data))
	return nil
}

func (n Num) Float() float64 {
	return float64(n)
}

// Optional is a numeric field with explicit presence. null, a missing key
// and the empty string are all unset.
type Optional struct {
	value float64
	set   bool
}

func Some(v float64) Optional {
	return Optional{value: Coerce(v), set: true}
}

func (o Optional) Get() (float64, bool) {
	return o.value, o.set
}

func (o Optional) Value() float64 {
	return o.value
}

func (o Optional) IsSet() bool {
	return o.set
}

// IsZero reports an unset field so that `omitzero` drops it on output.
func (o Optional) IsZero() bool {
	return !o.set
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		*o = Optional{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil && strings.TrimSpace(s) == "" {
			*o = Optional{}
			return nil
		}
	}
	*o = Optional{value: coerceRaw(trimmed), set: true}
	return nil
}

func coerceRaw(data []byte) float64 {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return 0
	}
	return Coerce(raw)
}
