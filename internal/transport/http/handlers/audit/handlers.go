package audithandler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"netpay/internal/auth"
	"netpay/internal/domain/audit"
	"netpay/internal/requestctx"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
	"netpay/internal/transport/http/shared"
)

const exportLimit = 10000

type Handler struct {
	Service *audit.Service
	logger  *zap.Logger
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service, logger: zap.L().Named("audit.http")}
}

type exportRow struct {
	ID         string `csv:"id"`
	ActorID    string `csv:"actor_id"`
	Action     string `csv:"action"`
	EntityType string `csv:"entity_type"`
	EntityID   string `csv:"entity_id"`
	RequestID  string `csv:"request_id"`
	IP         string `csv:"ip"`
	CreatedAt  string `csv:"created_at"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireScope(auth.ScopePayrollRead))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType"), EntityID: q.Get("entityId")}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		api.Fail(w, http.StatusServiceUnavailable, "persistence_disabled", "audit log requires a database", middleware.GetRequestID(r.Context()))
		return
	}
	principal, _ := middleware.GetPrincipal(r.Context())
	logger := requestctx.Logger(r.Context(), h.logger)

	page := shared.ParsePagination(r, 100, 500)
	filter := filterFrom(r)
	includeDetails := r.URL.Query().Get("includeDetails") == "true"

	total, err := h.Service.Count(r.Context(), principal.ClientID, filter)
	if err != nil {
		logger.Warn("audit count failed", zap.Error(err))
	}
	events, err := h.Service.List(r.Context(), principal.ClientID, filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		logger.Error("audit list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, shared.NewPage(events, total, page), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		api.Fail(w, http.StatusServiceUnavailable, "persistence_disabled", "audit log requires a database", middleware.GetRequestID(r.Context()))
		return
	}
	principal, _ := middleware.GetPrincipal(r.Context())

	events, err := h.Service.List(r.Context(), principal.ClientID, filterFrom(r), false, exportLimit, 0)
	if err != nil {
		requestctx.Logger(r.Context(), h.logger).Error("audit export failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(exportRows(events), &buf); err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func exportRows(events []audit.Event) []exportRow {
	rows := make([]exportRow, 0, len(events))
	for _, evt := range events {
		rows = append(rows, exportRow{
			ID:         evt.ID,
			ActorID:    evt.ActorID,
			Action:     evt.Action,
			EntityType: evt.EntityType,
			EntityID:   evt.EntityID,
			RequestID:  evt.RequestID,
			IP:         evt.IP,
			CreatedAt:  evt.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}
