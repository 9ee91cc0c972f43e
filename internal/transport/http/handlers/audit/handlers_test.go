package audithandler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpay/internal/auth"
	"netpay/internal/domain/audit"
	"netpay/internal/transport/http/middleware"
)

func TestAuditRoutesWithoutDatabase(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			principal := auth.Principal{ClientID: "client-a", Scopes: auth.DefaultScopes}
			next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), principal)))
		})
	})
	NewHandler(nil).RegisterRoutes(r)

	for _, path := range []string{"/audit/events", "/audit/events/export"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestAuditRoutesRequireAuth(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportRows(t *testing.T) {
	events := []audit.Event{{
		ID:         "e-1",
		ActorID:    "client-a",
		Action:     audit.ActionRecordCreate,
		EntityType: audit.EntityRecord,
		EntityID:   "rec-1",
		CreatedAt:  time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, gocsv.Marshal(exportRows(events), &buf))
	assert.Equal(t,
		"id,actor_id,action,entity_type,entity_id,request_id,ip,created_at\n"+
			"e-1,client-a,payroll.record.create,payroll_record,rec-1,,,2025-05-01T09:00:00Z\n",
		buf.String())
}
