package payroll

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch(t *testing.T) {
	input := "recruiter_id,hours_worked,rate,cpp,vacation_percent,unknown_column\n" +
		"r-1,40,25,,4,x\n" +
		"r-2, 10 ,abc,0,,y\n"

	records, err := ParseBatch(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "r-1", records[0].RecruiterID)
	assert.Equal(t, Num(40), records[0].HoursWorked)
	assert.False(t, records[0].CPP.IsSet())
	assert.Equal(t, Some(4), records[0].VacationPercent)

	assert.Equal(t, Num(10), records[1].HoursWorked)
	assert.Equal(t, Num(0), records[1].Rate)
	assert.Equal(t, Some(0), records[1].CPP)
	assert.False(t, records[1].VacationPercent.IsSet())
}

func TestParseBatchEmpty(t *testing.T) {
	_, err := ParseBatch(strings.NewReader("  \n"))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = ParseBatch(strings.NewReader("hours_worked,rate\n"))
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestParseBatchMalformed(t *testing.T) {
	_, err := ParseBatch(strings.NewReader("hours_worked,rate\n\"40,25\n"))
	assert.ErrorIs(t, err, ErrInvalidBatch)
}

func TestWriteResultsCSV(t *testing.T) {
	out := Compute(weeklyRecord(), "ca", "on")
	results := []Result{{
		Record:   out,
		Rules:    RuleSummary{Region: "ca", Jurisdiction: "on"},
		Warnings: []Warning{{Code: WarningZeroTaxRate}, {Code: WarningNegativeNet}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, results))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)

	row := map[string]string{}
	for i, name := range lines[0] {
		row[name] = lines[1][i]
	}
	assert.Equal(t, "1000", row["gross_pay"])
	assert.Equal(t, "59.5", row["cpp_amount"])
	assert.Equal(t, "781.24", row["net_pay"])
	assert.Equal(t, "on", row["jurisdiction"])
	assert.Equal(t, "zero_tax_rate;negative_net", row["warnings"])
}

func TestWriteRegisterCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRegisterCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "id,recruiter_id,"))
}

func TestRegisterRow(t *testing.T) {
	row := registerRow(StoredRecord{
		ID:        "abc",
		Net:       781.24,
		CreatedAt: time.Date(2025, 3, 1, 8, 30, 0, 0, time.FixedZone("EST", -5*3600)),
	})
	assert.Equal(t, "2025-03-01T13:30:00Z", row.CreatedAt)
	assert.Equal(t, 781.24, row.Net)
}
