package payroll

import "time"

// CalculateInput is one record to compute plus where it is computed.
// Empty Region/Province fall back to the record's own fields.
type CalculateInput struct {
	Record   Record
	Region   string
	Province string
	// Owner selects whose templates apply; templates are skipped without one.
	Owner         string
	ApplyTemplate bool
}

// RuleSummary tells the caller which tables were actually applied.
type RuleSummary struct {
	Region       string       `json:"region"`
	Jurisdiction string       `json:"jurisdiction"`
	Fallback     bool         `json:"fallback"`
	PayFrequency PayFrequency `json:"payFrequency"`
	BPA          float64      `json:"bpa"`
}

type Result struct {
	Record          Record      `json:"record"`
	Rules           RuleSummary `json:"rules"`
	Warnings        []Warning   `json:"warnings"`
	TemplateApplied bool        `json:"templateApplied"`
}

// SavedRecord is a persisted computation. Record is only loaded for single
// record reads.
type SavedRecord struct {
	ID             string    `json:"id"`
	RecruiterID    string    `json:"recruiterId"`
	Region         string    `json:"region"`
	Province       string    `json:"province"`
	PayPeriodStart string    `json:"payPeriodStart,omitempty"`
	PayPeriodEnd   string    `json:"payPeriodEnd,omitempty"`
	Gross          float64   `json:"gross"`
	Deductions     float64   `json:"deductions"`
	Net            float64   `json:"net"`
	CreatedAt      time.Time `json:"createdAt"`
	Record         *Record   `json:"record,omitempty"`
	Warnings       []Warning `json:"warnings,omitempty"`
}

// StoredRecord is the row shape. Payload is the record JSON, sealed when a
// data encryption key is configured.
type StoredRecord struct {
	ID             string
	Owner          string
	RecruiterID    string
	Region         string
	Province       string
	PayPeriodStart string
	PayPeriodEnd   string
	Gross          float64
	Deductions     float64
	Net            float64
	Payload        []byte
	CreatedAt      time.Time
}

func (r StoredRecord) summary() SavedRecord {
	return SavedRecord{
		ID:             r.ID,
		RecruiterID:    r.RecruiterID,
		Region:         r.Region,
		Province:       r.Province,
		PayPeriodStart: r.PayPeriodStart,
		PayPeriodEnd:   r.PayPeriodEnd,
		Gross:          r.Gross,
		Deductions:     r.Deductions,
		Net:            r.Net,
		CreatedAt:      r.CreatedAt,
	}
}
