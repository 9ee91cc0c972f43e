package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateRecord(ctx context.Context, row StoredRecord) (time.Time, error)
	GetRecord(ctx context.Context, owner, id string) (StoredRecord, error)
	CountRecords(ctx context.Context, owner, recruiterID string) (int, error)
	ListRecords(ctx context.Context, owner, recruiterID string, limit, offset int) ([]StoredRecord, error)
}
