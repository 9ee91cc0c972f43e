package payroll

import "errors"

var (
	ErrUnknownDeductionField   = errors.New("unknown deduction field")
	ErrRecordNotFound          = errors.New("payroll record not found")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrEmptyBatch              = errors.New("batch contains no rows")
)

var (
	ErrInvalidBatch        = errors.New("invalid batch csv")
	ErrPersistenceDisabled = errors.New("payroll persistence is not configured")
)
