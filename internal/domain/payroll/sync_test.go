package payroll

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncDeductionFieldOnlyTouchesPair(t *testing.T) {
	rec := Compute(weeklyRecord(), "ca", "on")

	got, err := SyncDeductionField("federal_tax", 10, rec)
	require.NoError(t, err)

	want := rec
	want.FederalTax = Some(10)
	want.FederalTaxAmount = Some(71.15)
	assert.Equal(t, want, got)

	var before, after map[string]any
	raw, _ := json.Marshal(rec)
	require.NoError(t, json.Unmarshal(raw, &before))
	raw, _ = json.Marshal(got)
	require.NoError(t, json.Unmarshal(raw, &after))
	for _, key := range []string{"federal_tax", "federal_tax_amount"} {
		delete(before, key)
		delete(after, key)
	}
	assert.Equal(t, before, after)
	assert.Equal(t, Num(218.76), got.TotalDeductions)
}

func TestSyncDeductionFieldStatutoryUsesGross(t *testing.T) {
	rec := weeklyRecord()
	rec.VacationPercent = Some(4)

	got, err := SyncDeductionField("cpp", "6", rec)
	require.NoError(t, err)
	assert.Equal(t, Some(6), got.CPP)
	assert.Equal(t, Some(62.40), got.CPPAmount)
}

func TestSyncDeductionFieldGarbageValueIsZero(t *testing.T) {
	got, err := SyncDeductionField("state_tax", "abc", weeklyRecord())
	require.NoError(t, err)
	assert.Equal(t, Some(0), got.StateTax)
	assert.Equal(t, Some(0), got.StateTaxAmount)
}

func TestSyncDeductionFieldUnknownField(t *testing.T) {
	rec := weeklyRecord()
	got, err := SyncDeductionField("net_pay", 5, rec)
	assert.True(t, errors.Is(err, ErrUnknownDeductionField))
	assert.Equal(t, rec, got)
}

func TestSyncThenComputeAgrees(t *testing.T) {
	rec := Compute(weeklyRecord(), "ca", "on")
	synced, err := SyncDeductionField("ei", 2, rec)
	require.NoError(t, err)

	out := Compute(synced, "ca", "on")
	assert.Equal(t, Some(20), out.EIAmount)
	assert.Equal(t, Num(222.16), out.TotalDeductions)
}
