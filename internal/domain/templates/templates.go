package templates

import (
	"context"
	"errors"
	"strings"
)

var ErrTemplateNotFound = errors.New("payroll template not found")

// Template holds the recurring per-recruiter amounts that prefill a payroll
// record before it is computed.
type Template struct {
	MedicalInsurance  float64 `json:"medical_insurance"`
	DentalInsurance   float64 `json:"dental_insurance"`
	LifeInsurance     float64 `json:"life_insurance"`
	RetirementAmount  float64 `json:"retirement_amount"`
	Deduction         float64 `json:"deduction"`
	ParentalInsurance float64 `json:"parental_insurance"`
	VacationPercent   float64 `json:"vacation_percent"`
}

// Store is a key/value store of templates keyed by owner and recruiter.
// The owner is the API client that wrote the template; one client never
// sees another client's templates.
type Store interface {
	Get(ctx context.Context, owner, recruiterID string) (Template, error)
	Put(ctx context.Context, owner, recruiterID string, tpl Template) error
	Delete(ctx context.Context, owner, recruiterID string) error
}

const keyPrefix = "payroll:template:"

func Key(owner, recruiterID string) string {
	return keyPrefix + strings.TrimSpace(owner) + ":" + strings.TrimSpace(recruiterID)
}
