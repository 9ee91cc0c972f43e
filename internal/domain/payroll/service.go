package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"netpay/internal/domain/templates"
	cryptoutil "netpay/internal/platform/crypto"
	"netpay/internal/platform/metrics"
)

const (
	exportPageSize        = 500
	templateLookupTimeout = 2 * time.Second
)

type Service struct {
	store     StoreAPI
	templates templates.Store
	crypto    *cryptoutil.Service
	metrics   *metrics.Collector
	logger    *zap.Logger
	group     singleflight.Group
	newID     func() string
}

// NewService wires the calculator to its collaborators. store may be nil,
// in which case only the stateless operations are available.
func NewService(store StoreAPI, tpls templates.Store, crypto *cryptoutil.Service, collector *metrics.Collector) *Service {
	return &Service{
		store:     store,
		templates: tpls,
		crypto:    crypto,
		metrics:   collector,
		logger:    zap.L().Named("payroll.service"),
		newID:     uuid.NewString,
	}
}

func (s *Service) PersistenceEnabled() bool {
	return s.store != nil
}

// Calculate optionally prefills the record from the recruiter's template,
// computes it and attaches advisory warnings.
func (s *Service) Calculate(ctx context.Context, in CalculateInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	rec := in.Record
	region := in.Region
	if region == "" {
		region = rec.Region
	}

	applied := false
	if in.ApplyTemplate && strings.TrimSpace(in.Owner) != "" && strings.TrimSpace(rec.RecruiterID) != "" && s.templates != nil {
		tpl, err := s.template(ctx, in.Owner, rec.RecruiterID)
		switch {
		case err == nil:
			rec = ApplyTemplate(rec, tpl, region)
			applied = true
		case errors.Is(err, templates.ErrTemplateNotFound):
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		default:
			s.logger.Warn("template lookup failed",
				zap.String("recruiterId", rec.RecruiterID),
				zap.Error(err),
			)
		}
	}

	out := Compute(rec, in.Region, in.Province)
	rules := resolveRules(rec, in.Region, in.Province)
	frequency := ParsePayFrequency(rec.PayFrequency)
	s.metrics.RecordCalculation(rules.Region, out.NetPay < 0)

	warnings := Advise(out, in.Region, in.Province)
	if warnings == nil {
		warnings = []Warning{}
	}
	return Result{
		Record: out,
		Rules: RuleSummary{
			Region:       rules.Region,
			Jurisdiction: rules.Jurisdiction,
			Fallback:     rules.Fallback,
			PayFrequency: frequency,
			BPA:          BasicPersonalAmount(frequency),
		},
		Warnings:        warnings,
		TemplateApplied: applied,
	}, nil
}

// CalculateBatch computes every row of a CSV upload. Rows are independent;
// region and province apply to rows that do not name their own.
func (s *Service) CalculateBatch(ctx context.Context, owner string, r io.Reader, region, province string, applyTemplate bool) ([]Result, error) {
	records, err := ParseBatch(r)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(records))
	for _, rec := range records {
		res, err := s.Calculate(ctx, CalculateInput{
			Record:        rec,
			Region:        region,
			Province:      province,
			Owner:         owner,
			ApplyTemplate: applyTemplate,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	s.logger.Debug("batch calculated", zap.Int("rows", len(results)))
	return results, nil
}

func (s *Service) Sync(field string, value any, rec Record) (Record, error) {
	return SyncDeductionField(field, value, rec)
}

// Save recomputes the record before persisting it, so stored totals always
// reconcile regardless of what the caller sent.
func (s *Service) Save(ctx context.Context, owner string, in CalculateInput) (SavedRecord, error) {
	if s.store == nil {
		return SavedRecord{}, ErrPersistenceDisabled
	}
	in.Owner = owner
	res, err := s.Calculate(ctx, in)
	if err != nil {
		return SavedRecord{}, err
	}
	payload, err := json.Marshal(res.Record)
	if err != nil {
		return SavedRecord{}, fmt.Errorf("encode record: %w", err)
	}
	sealed, err := s.crypto.Seal(payload)
	if err != nil {
		return SavedRecord{}, fmt.Errorf("seal record: %w", err)
	}

	row := StoredRecord{
		ID:             s.newID(),
		Owner:          owner,
		RecruiterID:    res.Record.RecruiterID,
		Region:         res.Rules.Region,
		Province:       res.Rules.Jurisdiction,
		PayPeriodStart: res.Record.PayPeriodStart,
		PayPeriodEnd:   res.Record.PayPeriodEnd,
		Gross:          res.Record.GrossPay.Float(),
		Deductions:     res.Record.TotalDeductions.Float(),
		Net:            res.Record.NetPay.Float(),
		Payload:        sealed,
	}
	createdAt, err := s.store.CreateRecord(ctx, row)
	if err != nil {
		return SavedRecord{}, fmt.Errorf("create payroll record: %w", err)
	}
	row.CreatedAt = createdAt

	saved := row.summary()
	saved.Record = &res.Record
	saved.Warnings = res.Warnings
	s.logger.Info("payroll record saved",
		zap.String("id", saved.ID),
		zap.String("owner", owner),
		zap.String("region", saved.Region),
	)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, owner, id string) (SavedRecord, error) {
	if s.store == nil {
		return SavedRecord{}, ErrPersistenceDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return SavedRecord{}, ErrRecordNotFound
	}
	row, err := s.store.GetRecord(ctx, owner, id)
	if err != nil {
		return SavedRecord{}, err
	}
	plain, err := s.crypto.Open(row.Payload)
	if err != nil {
		return SavedRecord{}, fmt.Errorf("open record %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return SavedRecord{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	saved := row.summary()
	saved.Record = &rec
	return saved, nil
}

func (s *Service) List(ctx context.Context, owner, recruiterID string, limit, offset int) ([]SavedRecord, int, error) {
	if s.store == nil {
		return nil, 0, ErrPersistenceDisabled
	}
	total, err := s.store.CountRecords(ctx, owner, recruiterID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.store.ListRecords(ctx, owner, recruiterID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SavedRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.summary())
	}
	return out, total, nil
}

func (s *Service) PayslipPDF(ctx context.Context, owner, id string) ([]byte, error) {
	saved, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return RenderPayslip(saved)
}

// Export writes every saved record of owner, optionally narrowed to one
// recruiter, as a register in the requested format.
func (s *Service) Export(ctx context.Context, owner, recruiterID, format string, w io.Writer) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, format)
	}
	if s.store == nil {
		return ErrPersistenceDisabled
	}

	var register []RegisterRow
	for offset := 0; ; offset += exportPageSize {
		rows, err := s.store.ListRecords(ctx, owner, recruiterID, exportPageSize, offset)
		if err != nil {
			return err
		}
		for _, row := range rows {
			register = append(register, registerRow(row))
		}
		if len(rows) < exportPageSize {
			break
		}
	}

	if format == ExportFormatXLSX {
		return WriteRegisterXLSX(w, register)
	}
	return WriteRegisterCSV(w, register)
}

func (s *Service) GetTemplate(ctx context.Context, owner, recruiterID string) (templates.Template, error) {
	return s.templates.Get(ctx, owner, recruiterID)
}

func (s *Service) PutTemplate(ctx context.Context, owner, recruiterID string, tpl templates.Template) error {
	s.group.Forget(templates.Key(owner, recruiterID))
	return s.templates.Put(ctx, owner, recruiterID, tpl)
}

func (s *Service) DeleteTemplate(ctx context.Context, owner, recruiterID string) error {
	s.group.Forget(templates.Key(owner, recruiterID))
	return s.templates.Delete(ctx, owner, recruiterID)
}

// template collapses concurrent lookups for the same recruiter, which is
// the common case for a batch upload. The shared lookup runs on its own
// deadline so one caller giving up does not fail the others waiting on it.
func (s *Service) template(ctx context.Context, owner, recruiterID string) (templates.Template, error) {
	ch := s.group.DoChan(templates.Key(owner, recruiterID), func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), templateLookupTimeout)
		defer cancel()
		return s.templates.Get(lookupCtx, owner, recruiterID)
	})
	select {
	case <-ctx.Done():
		return templates.Template{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return templates.Template{}, res.Err
		}
		return res.Val.(templates.Template), nil
	}
}
