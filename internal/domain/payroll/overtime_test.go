package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOvertimeThreshold(t *testing.T) {
	assert.Equal(t, 44.0, OvertimeThreshold("ca", "on"))
	assert.Equal(t, 40.0, OvertimeThreshold("ca", "QC"))
	assert.Equal(t, 40.0, OvertimeThreshold("qc", ""))
	assert.Equal(t, 40.0, OvertimeThreshold("ca", "mb"))
	assert.Equal(t, 40.0, OvertimeThreshold("us", "ny"))
	assert.Equal(t, 40.0, OvertimeThreshold("", ""))
}

func TestSplitOvertime(t *testing.T) {
	got := SplitOvertime(50, 20, "ca", "on")
	assert.Equal(t, Overtime{
		Threshold:     44,
		RegularHours:  44,
		OvertimeHours: 6,
		RegularPay:    880,
		OvertimePay:   180,
		GrossPay:      1060,
	}, got)

	got = SplitOvertime(50, 20, "qc", "")
	assert.Equal(t, 300.0, got.OvertimePay)
	assert.Equal(t, 1100.0, got.GrossPay)

	got = SplitOvertime(30, 20, "us", "")
	assert.Equal(t, 0.0, got.OvertimeHours)
	assert.Equal(t, 600.0, got.GrossPay)

	got = SplitOvertime(-5, 20, "us", "")
	assert.Equal(t, 0.0, got.GrossPay)
}
