package payroll

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"numeric string", " 42.10 ", 42.1},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(-1), 0},
		{"json number", json.Number("3.25"), 3.25},
		{"true", true, 1},
		{"struct", struct{}{}, 0},
		{"optional", Some(9), 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Coerce(tc.in))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 0.0, Round2(math.NaN()))
	assert.Equal(t, 59.5, PctToAmount(1000, 5.95))
	assert.Equal(t, 0.0, PctToAmount(1000, 0))
}

func TestMoneyArithmeticClamps(t *testing.T) {
	assert.Equal(t, MaxAmount, Round2(math.Inf(1)))
	assert.Equal(t, -MaxAmount, Round2(-1e300))
	assert.Equal(t, 0.0, Round2(math.NaN()))
	assert.Equal(t, MaxAmount+5, sum(math.Inf(1), 5))
	assert.True(t, outOfRange(math.Inf(-1)))
	assert.True(t, outOfRange(MaxAmount))
	assert.False(t, outOfRange(999999999999.99))
}

func TestNumDecodesLooseInput(t *testing.T) {
	var v struct {
		A Num `json:"a"`
		B Num `json:"b"`
		C Num `json:"c"`
		D Num `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"12.5","b":null,"c":"n/a","d":{"x":1}}`), &v)
	require.NoError(t, err)
	assert.Equal(t, Num(12.5), v.A)
	assert.Equal(t, Num(0), v.B)
	assert.Equal(t, Num(0), v.C)
	assert.Equal(t, Num(0), v.D)
}

func TestOptionalPresence(t *testing.T) {
	var v struct {
		Null    Optional `json:"null"`
		Empty   Optional `json:"empty"`
		Blank   Optional `json:"blank"`
		Zero    Optional `json:"zero"`
		Str     Optional `json:"str"`
		Missing Optional `json:"missing"`
	}
	err := json.Unmarshal([]byte(`{"null":null,"empty":"","blank":"  ","zero":0,"str":"5.5"}`), &v)
	require.NoError(t, err)

	assert.False(t, v.Null.IsSet())
	assert.False(t, v.Empty.IsSet())
	assert.False(t, v.Blank.IsSet())
	assert.False(t, v.Missing.IsSet())

	got, ok := v.Zero.Get()
	assert.True(t, ok)
	assert.Equal(t, 0.0, got)

	got, ok = v.Str.Get()
	assert.True(t, ok)
	assert.Equal(t, 5.5, got)
}

func TestOptionalOmitzero(t *testing.T) {
	out, err := json.Marshal(struct {
		A Optional `json:"a,omitzero"`
		B Optional `json:"b,omitzero"`
	}{B: Some(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":0}`, string(out))
}
