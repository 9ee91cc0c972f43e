package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"netpay/internal/auth"
	"netpay/internal/domain/audit"
	"netpay/internal/domain/payroll"
	"netpay/internal/domain/templates"
	"netpay/internal/requestctx"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
	"netpay/internal/transport/http/shared"
)

const (
	endpointRecordCreate = "payroll.records.create"
	maxBatchBytes        = 5 << 20
)

// Handler serves the payroll API. Idem and Audit are nil when no database
// is configured.
type Handler struct {
	Service *payroll.Service
	Idem    middleware.Idempotency
	Audit   audit.Recorder
	logger  *zap.Logger
}

func NewHandler(service *payroll.Service, idem middleware.Idempotency, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Idem: idem, Audit: recorder, logger: zap.L().Named("payroll.http")}
}

type calculateRequest struct {
	Record        payroll.Record `json:"record"`
	Region        string         `json:"region" validate:"omitempty,max=32"`
	Province      string         `json:"province" validate:"omitempty,max=32"`
	ApplyTemplate bool           `json:"applyTemplate"`
}

func (p calculateRequest) input() payroll.CalculateInput {
	return payroll.CalculateInput{
		Record:        p.Record,
		Region:        strings.TrimSpace(p.Region),
		Province:      strings.TrimSpace(p.Province),
		ApplyTemplate: p.ApplyTemplate,
	}
}

// owner is the authenticated client, or empty on the public routes when no
// token was sent. Templates only apply for an owner.
func owner(r *http.Request) string {
	principal, _ := middleware.GetPrincipal(r.Context())
	return principal.ClientID
}

type syncRequest struct {
	Field  string         `json:"field" validate:"required,max=64"`
	Value  any            `json:"value"`
	Record payroll.Record `json:"record"`
}

type overtimeRequest struct {
	Hours    payroll.Num `json:"hours"`
	Rate     payroll.Num `json:"rate"`
	Region   string      `json:"region" validate:"omitempty,max=32"`
	Province string      `json:"province" validate:"omitempty,max=32"`
}

type templateRequest struct {
	MedicalInsurance  float64 `json:"medical_insurance" validate:"gte=0"`
	DentalInsurance   float64 `json:"dental_insurance" validate:"gte=0"`
	LifeInsurance     float64 `json:"life_insurance" validate:"gte=0"`
	RetirementAmount  float64 `json:"retirement_amount" validate:"gte=0"`
	Deduction         float64 `json:"deduction" validate:"gte=0"`
	ParentalInsurance float64 `json:"parental_insurance" validate:"gte=0"`
	VacationPercent   float64 `json:"vacation_percent" validate:"gte=0,lte=100"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/rules", h.handleRules)
		r.Get("/bpa", h.handleBPA)
		r.Post("/calculate", h.handleCalculate)
		r.Post("/calculate/batch", h.handleCalculateBatch)
		r.Post("/sync", h.handleSync)
		r.Post("/overtime", h.handleOvertime)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.With(middleware.RequireScope(auth.ScopePayrollWrite)).Post("/records", h.handleCreateRecord)
			r.With(middleware.RequireScope(auth.ScopePayrollRead)).Get("/records", h.handleListRecords)
			r.With(middleware.RequireScope(auth.ScopePayrollRead)).Get("/records/export", h.handleExportRecords)
			r.With(middleware.RequireScope(auth.ScopePayrollRead)).Get("/records/{recordID}", h.handleGetRecord)
			r.With(middleware.RequireScope(auth.ScopePayrollRead)).Get("/records/{recordID}/payslip", h.handlePayslip)

			r.With(middleware.RequireScope(auth.ScopePayrollRead)).Get("/templates/{recruiterID}", h.handleGetTemplate)
			r.With(middleware.RequireScope(auth.ScopePayrollWrite)).Put("/templates/{recruiterID}", h.handlePutTemplate)
			r.With(middleware.RequireScope(auth.ScopePayrollWrite)).Delete("/templates/{recruiterID}", h.handleDeleteTemplate)
		})
	})
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	api.Success(w, payroll.RuleCatalog(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBPA(w http.ResponseWriter, r *http.Request) {
	frequency := payroll.ParsePayFrequency(r.URL.Query().Get("frequency"))
	api.Success(w, map[string]any{
		"frequency": frequency,
		"bpa":       payroll.BasicPersonalAmount(frequency),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var payload calculateRequest
	if !decode(w, r, &payload) {
		return
	}
	if rejectCalculate(w, r, payload) {
		return
	}

	in := payload.input()
	in.Owner = owner(r)
	res, err := h.Service.Calculate(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, res, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalculateBatch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	v := shared.NewValidator()
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	v.Enum("format", format, []string{"json", payroll.ExportFormatCSV}, "must be json or csv")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	results, err := h.Service.CalculateBatch(
		r.Context(),
		owner(r),
		io.LimitReader(r.Body, maxBatchBytes),
		strings.TrimSpace(query.Get("region")),
		strings.TrimSpace(query.Get("province")),
		query.Get("applyTemplate") == "true",
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if format == payroll.ExportFormatCSV {
		var buf bytes.Buffer
		if err := payroll.WriteResultsCSV(&buf, results); err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=payroll-batch.csv")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}
	api.Success(w, map[string]any{"items": results, "count": len(results)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	var payload syncRequest
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	rec, err := h.Service.Sync(payload.Field, payload.Value, payload.Record)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOvertime(w http.ResponseWriter, r *http.Request) {
	var payload overtimeRequest
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if payload.Hours < 0 {
		v.Add("hours", "must be greater than or equal to 0")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	api.Success(w, payroll.SplitOvertime(payload.Hours.Float(), payload.Rate.Float(), payload.Region, payload.Province), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	logger := requestctx.Logger(r.Context(), h.logger)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload calculateRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectCalculate(w, r, payload) {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	reserved := false
	if idempotencyKey != "" && h.Idem != nil {
		stored, found, err := h.Idem.Reserve(r.Context(), principal.ClientID, endpointRecordCreate, idempotencyKey, requestHash)
		switch {
		case errors.Is(err, middleware.ErrIdempotencyConflict):
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different request", middleware.GetRequestID(r.Context()))
			return
		case errors.Is(err, middleware.ErrIdempotencyInProgress):
			api.Fail(w, http.StatusConflict, "idempotency_in_progress", "a request with this idempotency key is still in progress", middleware.GetRequestID(r.Context()))
			return
		case err != nil:
			logger.Warn("idempotency reserve failed", zap.Error(err))
		case found:
			api.Created(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		default:
			reserved = true
		}
	}

	saved, err := h.Service.Save(r.Context(), principal.ClientID, payload.input())
	if err != nil {
		if reserved {
			if err := h.Idem.Release(context.WithoutCancel(r.Context()), principal.ClientID, endpointRecordCreate, idempotencyKey); err != nil {
				logger.Warn("idempotency release failed", zap.Error(err))
			}
		}
		h.fail(w, r, err)
		return
	}

	if reserved {
		encoded, err := json.Marshal(saved)
		if err != nil {
			logger.Warn("idempotency response marshal failed", zap.Error(err))
		} else if err := h.Idem.Complete(context.WithoutCancel(r.Context()), principal.ClientID, endpointRecordCreate, idempotencyKey, requestHash, encoded); err != nil {
			logger.Warn("idempotency complete failed", zap.Error(err))
		}
	}

	summary := saved
	summary.Record = nil
	h.audit(r, audit.Entry{Action: audit.ActionRecordCreate, EntityType: audit.EntityRecord, EntityID: saved.ID, After: summary})
	api.Created(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiterId"))

	items, total, err := h.Service.List(r.Context(), principal.ClientID, recruiterID, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	saved, err := h.Service.Get(r.Context(), principal.ClientID, chi.URLParam(r, "recordID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	recordID := chi.URLParam(r, "recordID")
	pdf, err := h.Service.PayslipPDF(r.Context(), principal.ClientID, recordID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", recordID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = payroll.ExportFormatCSV
	}
	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiterId"))

	var buf bytes.Buffer
	if err := h.Service.Export(r.Context(), principal.ClientID, recruiterID, format, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("payroll-register-%s.%s", time.Now().UTC().Format("20060102"), format)
	contentType := "text/csv"
	if format == payroll.ExportFormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Service.GetTemplate(r.Context(), owner(r), chi.URLParam(r, "recruiterID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, tpl, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templateRequest
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	recruiterID := chi.URLParam(r, "recruiterID")
	entry := audit.Entry{Action: audit.ActionTemplatePut, EntityType: audit.EntityTemplate, EntityID: recruiterID}
	if previous, err := h.Service.GetTemplate(r.Context(), owner(r), recruiterID); err == nil {
		entry.Before = previous
	}

	tpl := templates.Template(payload)
	if err := h.Service.PutTemplate(r.Context(), owner(r), recruiterID, tpl); err != nil {
		h.fail(w, r, err)
		return
	}
	entry.After = tpl
	h.audit(r, entry)
	api.Success(w, tpl, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	recruiterID := chi.URLParam(r, "recruiterID")
	entry := audit.Entry{Action: audit.ActionTemplateDelete, EntityType: audit.EntityTemplate, EntityID: recruiterID}
	if previous, err := h.Service.GetTemplate(r.Context(), owner(r), recruiterID); err == nil {
		entry.Before = previous
	}
	if err := h.Service.DeleteTemplate(r.Context(), owner(r), recruiterID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, entry)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// audit stamps the entry with the caller and request, then stores it. A
// failed write is logged and never fails the request.
func (h *Handler) audit(r *http.Request, entry audit.Entry) {
	if h.Audit == nil {
		return
	}
	principal, _ := middleware.GetPrincipal(r.Context())
	entry.ActorID = principal.ClientID
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = middleware.ClientIPKey(r)
	if err := h.Audit.Record(r.Context(), entry); err != nil {
		requestctx.Logger(r.Context(), h.logger).Warn("audit record failed",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// rejectCalculate checks the envelope fields and the record's period dates.
// Numeric record fields are never rejected; they are coerced.
func rejectCalculate(w http.ResponseWriter, r *http.Request, payload calculateRequest) bool {
	v := shared.NewValidator()
	v.Struct(payload)
	start, _ := v.OptionalDate("record.pay_period_start", payload.Record.PayPeriodStart)
	end, _ := v.OptionalDate("record.pay_period_end", payload.Record.PayPeriodEnd)
	v.DateOrder("record.pay_period_start", start, "record.pay_period_end", end)
	return v.Reject(w, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrUnknownDeductionField):
		api.Fail(w, http.StatusBadRequest, "unknown_field", err.Error(), reqID)
	case errors.Is(err, payroll.ErrEmptyBatch):
		api.Fail(w, http.StatusBadRequest, "empty_batch", "batch contains no rows", reqID)
	case errors.Is(err, payroll.ErrInvalidBatch):
		api.Fail(w, http.StatusBadRequest, "invalid_batch", "batch csv could not be parsed", reqID)
	case errors.Is(err, payroll.ErrUnsupportedExportFormat):
		api.Fail(w, http.StatusBadRequest, "unsupported_format", "format must be csv or xlsx", reqID)
	case errors.Is(err, payroll.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", reqID)
	case errors.Is(err, templates.ErrTemplateNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll template not found", reqID)
	case errors.Is(err, payroll.ErrPersistenceDisabled):
		api.Fail(w, http.StatusServiceUnavailable, "persistence_disabled", "payroll persistence is not configured", reqID)
	default:
		requestctx.Logger(r.Context(), h.logger).Error("payroll request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll request failed", reqID)
	}
}
