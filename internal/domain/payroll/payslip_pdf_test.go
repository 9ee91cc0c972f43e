package payroll

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPayslip(t *testing.T) {
	out := Compute(weeklyRecord(), "ca", "on")
	pdf, err := RenderPayslip(SavedRecord{
		ID:         "0b6f4c1e-0000-4000-8000-000000000001",
		Region:     "ca",
		Province:   "on",
		Gross:      out.GrossPay.Float(),
		Deductions: out.TotalDeductions.Float(),
		Net:        out.NetPay.Float(),
		Record:     &out,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.True(t, bytes.Contains(pdf, []byte("%%EOF")))
}

func TestRenderPayslipWithoutRecord(t *testing.T) {
	pdf, err := RenderPayslip(SavedRecord{ID: "x", Net: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
