package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateRecord(ctx context.Context, row StoredRecord) (time.Time, error) {
	var createdAt time.Time
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_records (id, owner, recruiter_id, region, province, pay_period_start, pay_period_end, gross, deductions, net, payload)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING created_at
  `, row.ID, row.Owner, row.RecruiterID, row.Region, row.Province, row.PayPeriodStart, row.PayPeriodEnd,
		row.Gross, row.Deductions, row.Net, row.Payload).Scan(&createdAt)
	if err != nil {
		return time.Time{}, err
	}
	return createdAt, nil
}

func (s *Store) GetRecord(ctx context.Context, owner, id string) (StoredRecord, error) {
	var row StoredRecord
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, owner, recruiter_id, region, province, pay_period_start, pay_period_end,
           gross, deductions, net, payload, created_at
    FROM payroll_records
    WHERE owner = $1 AND id = $2
  `, owner, id).Scan(&row.ID, &row.Owner, &row.RecruiterID, &row.Region, &row.Province, &row.PayPeriodStart, &row.PayPeriodEnd,
		&row.Gross, &row.Deductions, &row.Net, &row.Payload, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return StoredRecord{}, err
	}
	return row, nil
}

func (s *Store) CountRecords(ctx context.Context, owner, recruiterID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM payroll_records
    WHERE owner = $1 AND ($2 = '' OR recruiter_id = $2)
  `, owner, recruiterID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListRecords(ctx context.Context, owner, recruiterID string, limit, offset int) ([]StoredRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, recruiter_id, region, province, pay_period_start, pay_period_end,
           gross, deductions, net, created_at
    FROM payroll_records
    WHERE owner = $1 AND ($2 = '' OR recruiter_id = $2)
    ORDER BY created_at DESC, id
    LIMIT $3 OFFSET $4
  `, owner, recruiterID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		row := StoredRecord{Owner: owner}
		if err := rows.Scan(&row.ID, &row.RecruiterID, &row.Region, &row.Province, &row.PayPeriodStart, &row.PayPeriodEnd,
			&row.Gross, &row.Deductions, &row.Net, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
