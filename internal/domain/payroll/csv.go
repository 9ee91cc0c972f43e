package payroll

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// BatchRow is one line of a batch upload. Columns are optional and use the
// record's snake_case keys; cells are read as loosely as JSON input.
type BatchRow struct {
	RecruiterID    string `csv:"recruiter_id"`
	PayPeriodStart string `csv:"pay_period_start"`
	PayPeriodEnd   string `csv:"pay_period_end"`
	PayFrequency   string `csv:"pay_frequency"`
	Region         string `csv:"region"`
	Province       string `csv:"province"`
	State          string `csv:"state"`

	HoursWorked       string `csv:"hours_worked"`
	Rate              string `csv:"rate"`
	Bonus             string `csv:"bonus"`
	Commission        string `csv:"commission"`
	Tip               string `csv:"tip"`
	ParentalInsurance string `csv:"parental_insurance"`
	TravelAllowance   string `csv:"travel_allowance"`
	FamilyBonus       string `csv:"family_bonus"`
	TaxCredit         string `csv:"tax_credit"`
	VacationPercent   string `csv:"vacation_percent"`
	VacationPay       string `csv:"vacation_pay"`

	CPP           string `csv:"cpp"`
	QPP           string `csv:"qpp"`
	EI            string `csv:"ei"`
	RQAP          string `csv:"rqap"`
	FICA          string `csv:"fica"`
	Medicare      string `csv:"medicare"`
	FederalTax    string `csv:"federal_tax"`
	ProvincialTax string `csv:"provincial_tax"`
	StateTax      string `csv:"state_tax"`

	RetirementAmount string `csv:"retirement_amount"`
	MedicalInsurance string `csv:"medical_insurance"`
	DentalInsurance  string `csv:"dental_insurance"`
	LifeInsurance    string `csv:"life_insurance"`
	Deduction        string `csv:"deduction"`
}

func (b BatchRow) record() Record {
	return Record{
		RecruiterID:    strings.TrimSpace(b.RecruiterID),
		PayPeriodStart: strings.TrimSpace(b.PayPeriodStart),
		PayPeriodEnd:   strings.TrimSpace(b.PayPeriodEnd),
		PayFrequency:   strings.TrimSpace(b.PayFrequency),
		Region:         strings.TrimSpace(b.Region),
		Province:       strings.TrimSpace(b.Province),
		State:          strings.TrimSpace(b.State),

		HoursWorked:       Num(Coerce(b.HoursWorked)),
		Rate:              Num(Coerce(b.Rate)),
		Bonus:             Num(Coerce(b.Bonus)),
		Commission:        Num(Coerce(b.Commission)),
		Tip:               Num(Coerce(b.Tip)),
		ParentalInsurance: Num(Coerce(b.ParentalInsurance)),
		TravelAllowance:   Num(Coerce(b.TravelAllowance)),
		FamilyBonus:       Num(Coerce(b.FamilyBonus)),
		TaxCredit:         Num(Coerce(b.TaxCredit)),
		VacationPercent:   optionalCell(b.VacationPercent),
		VacationPay:       Num(Coerce(b.VacationPay)),

		CPP:           optionalCell(b.CPP),
		QPP:           optionalCell(b.QPP),
		EI:            optionalCell(b.EI),
		RQAP:          optionalCell(b.RQAP),
		FICA:          optionalCell(b.FICA),
		Medicare:      optionalCell(b.Medicare),
		FederalTax:    optionalCell(b.FederalTax),
		ProvincialTax: optionalCell(b.ProvincialTax),
		StateTax:      optionalCell(b.StateTax),

		RetirementAmount: Num(Coerce(b.RetirementAmount)),
		MedicalInsurance: Num(Coerce(b.MedicalInsurance)),
		DentalInsurance:  Num(Coerce(b.DentalInsurance)),
		LifeInsurance:    Num(Coerce(b.LifeInsurance)),
		Deduction:        Num(Coerce(b.Deduction)),
	}
}

// optionalCell treats a blank cell like a missing JSON key.
func optionalCell(s string) Optional {
	if strings.TrimSpace(s) == "" {
		return Optional{}
	}
	return Some(Coerce(s))
}

// ParseBatch reads a header-first CSV into records.
func ParseBatch(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyBatch
	}
	var rows []BatchRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// ResultRow is the flattened CSV shape of a computed record.
type ResultRow struct {
	RecruiterID     string  `csv:"recruiter_id"`
	PayPeriodStart  string  `csv:"pay_period_start"`
	PayPeriodEnd    string  `csv:"pay_period_end"`
	Region          string  `csv:"region"`
	Jurisdiction    string  `csv:"jurisdiction"`
	GrossPay        float64 `csv:"gross_pay"`
	VacationPay     float64 `csv:"vacation_pay"`
	CPPAmount       float64 `csv:"cpp_amount"`
	QPPAmount       float64 `csv:"qpp_amount"`
	EIAmount        float64 `csv:"ei_amount"`
	RQAPAmount      float64 `csv:"rqap_amount"`
	FICAAmount      float64 `csv:"fica_amount"`
	MedicareAmount  float64 `csv:"medicare_amount"`
	FederalTax      float64 `csv:"federal_tax_amount"`
	ProvincialTax   float64 `csv:"provincial_tax_amount"`
	StateTax        float64 `csv:"state_tax_amount"`
	TaxAmount       float64 `csv:"tax_amount"`
	TotalDeductions float64 `csv:"total_deductions"`
	NetPay          float64 `csv:"net_pay"`
	EmployerTotal   float64 `csv:"employer_contrib_total"`
	Warnings        string  `csv:"warnings"`
}

func resultRow(res Result) ResultRow {
	rec := res.Record
	codes := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	return ResultRow{
		RecruiterID:     rec.RecruiterID,
		PayPeriodStart:  rec.PayPeriodStart,
		PayPeriodEnd:    rec.PayPeriodEnd,
		Region:          res.Rules.Region,
		Jurisdiction:    res.Rules.Jurisdiction,
		GrossPay:        rec.GrossPay.Float(),
		VacationPay:     rec.VacationPay.Float(),
		CPPAmount:       rec.CPPAmount.Value(),
		QPPAmount:       rec.QPPAmount.Value(),
		EIAmount:        rec.EIAmount.Value(),
		RQAPAmount:      rec.RQAPAmount.Value(),
		FICAAmount:      rec.FICAAmount.Value(),
		MedicareAmount:  rec.MedicareAmount.Value(),
		FederalTax:      rec.FederalTaxAmount.Value(),
		ProvincialTax:   rec.ProvincialTaxAmount.Value(),
		StateTax:        rec.StateTaxAmount.Value(),
		TaxAmount:       rec.TaxAmount.Float(),
		TotalDeductions: rec.TotalDeductions.Float(),
		NetPay:          rec.NetPay.Float(),
		EmployerTotal:   rec.EmployerContrib.Total.Float(),
		Warnings:        strings.Join(codes, ";"),
	}
}

func WriteResultsCSV(w io.Writer, results []Result) error {
	rows := make([]ResultRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, resultRow(res))
	}
	return gocsv.Marshal(rows, w)
}

// RegisterRow is one saved record in an export.
type RegisterRow struct {
	ID             string  `csv:"id"`
	RecruiterID    string  `csv:"recruiter_id"`
	Region         string  `csv:"region"`
	Province       string  `csv:"province"`
	PayPeriodStart string  `csv:"pay_period_start"`
	PayPeriodEnd   string  `csv:"pay_period_end"`
	Gross          float64 `csv:"gross"`
	Deductions     float64 `csv:"deductions"`
	Net            float64 `csv:"net"`
	CreatedAt      string  `csv:"created_at"`
}

func registerRow(row StoredRecord) RegisterRow {
	return RegisterRow{
		ID:             row.ID,
		RecruiterID:    row.RecruiterID,
		Region:         row.Region,
		Province:       row.Province,
		PayPeriodStart: row.PayPeriodStart,
		PayPeriodEnd:   row.PayPeriodEnd,
		Gross:          row.Gross,
		Deductions:     row.Deductions,
		Net:            row.Net,
		CreatedAt:      row.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func WriteRegisterCSV(w io.Writer, rows []RegisterRow) error {
	if rows == nil {
		rows = []RegisterRow{}
	}
	return gocsv.Marshal(rows, w)
}
