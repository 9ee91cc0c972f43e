package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Field  string  `json:"field" validate:"required"`
	Format string  `json:"format" validate:"omitempty,oneof=csv xlsx"`
	Hours  float64 `json:"hours" validate:"gte=0,lte=168"`
}

func TestValidatorStruct(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Format: "pdf", Hours: 200})

	assert.Equal(t, []ValidationIssue{
		{Field: "field", Reason: "is required"},
		{Field: "format", Reason: "must be one of: csv xlsx"},
		{Field: "hours", Reason: "must be less than or equal to 168"},
	}, v.Issues())

	ok := NewValidator()
	ok.Struct(samplePayload{Field: "cpp", Format: "csv", Hours: 40})
	assert.False(t, ok.HasIssues())
}

func TestValidatorDates(t *testing.T) {
	v := NewValidator()
	start, _ := v.OptionalDate("pay_period_start", "2025-03-10")
	end, _ := v.OptionalDate("pay_period_end", "2025-03-03")
	v.DateOrder("pay_period_start", start, "pay_period_end", end)
	_, present := v.OptionalDate("other", "")
	v.OptionalDate("broken", "10/03/2025")

	assert.False(t, present)
	assert.Len(t, v.Issues(), 3)
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	v.Enum("frequency", "daily", []string{"weekly", "biweekly", "monthly"}, "unsupported pay frequency")

	rec := httptest.NewRecorder()
	require.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body["requestId"])
}
