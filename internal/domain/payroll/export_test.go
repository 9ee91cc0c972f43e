package payroll

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteRegisterXLSX(t *testing.T) {
	rows := []RegisterRow{
		{ID: "a", RecruiterID: "r-1", Region: "ca", Province: "on", Gross: 1000, Deductions: 218.76, Net: 781.24},
		{ID: "b", RecruiterID: "r-2", Region: "us", Province: "tx", Gross: 1000, Deductions: 147.65, Net: 852.35},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRegisterXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{registerSheet}, f.GetSheetList())

	header, err := f.GetCellValue(registerSheet, "G1")
	require.NoError(t, err)
	assert.Equal(t, "Gross", header)

	id, err := f.GetCellValue(registerSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	label, err := f.GetCellValue(registerSheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Total", label)

	formula, err := f.GetCellFormula(registerSheet, "I4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(I2:I3)", formula)
}

func TestWriteRegisterXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRegisterXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	label, err := f.GetCellValue(registerSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total", label)
}
