package authhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp/totp"

	"netpay/internal/auth"
)

const testTOTPSecret = "JBSWY3DPEHPK3PXP"

func newTestRouter(t *testing.T, totpSecret string) http.Handler {
	t.Helper()
	hash, err := auth.HashSecret("s3cret-value")
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	h := NewHandler("jwt-secret", "payroll-ui", hash, totpSecret, 15*time.Minute)
	r := chi.NewRouter()
	h.RegisterRoutes(r, 100)
	return r
}

func postToken(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env.Error.Code
}

func TestHandleTokenIssuesToken(t *testing.T) {
	router := newTestRouter(t, "")
	rec := postToken(router, `{"clientId":"payroll-ui","clientSecret":"s3cret-value"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data tokenResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.TokenType != "Bearer" || env.Data.ExpiresIn != 900 {
		t.Fatalf("unexpected token response %+v", env.Data)
	}
	claims, err := auth.ParseToken("jwt-secret", env.Data.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.ClientID != "payroll-ui" || len(claims.Scopes) != 2 {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestHandleTokenRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t, "")
	cases := map[string]string{
		"wrong secret": `{"clientId":"payroll-ui","clientSecret":"nope"}`,
		"wrong client": `{"clientId":"other","clientSecret":"s3cret-value"}`,
	}
	for name, body := range cases {
		rec := postToken(router, body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if code := errorCode(t, rec); code != "invalid_credentials" {
			t.Fatalf("%s: unexpected code %q", name, code)
		}
	}
}

func TestHandleTokenValidation(t *testing.T) {
	router := newTestRouter(t, "")
	rec := postToken(router, `{"clientId":"payroll-ui"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "validation_error" {
		t.Fatalf("unexpected code %q", code)
	}

	rec = postToken(router, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandleTokenMFA(t *testing.T) {
	router := newTestRouter(t, testTOTPSecret)

	rec := postToken(router, `{"clientId":"payroll-ui","clientSecret":"s3cret-value"}`)
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "mfa_invalid" {
		t.Fatalf("expected mfa_invalid, got %d %s", rec.Code, rec.Body.String())
	}

	code, err := totp.GenerateCode(testTOTPSecret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	rec = postToken(router, `{"clientId":"payroll-ui","clientSecret":"s3cret-value","mfaCode":"`+code+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid mfa code, got %d", rec.Code)
	}
}

func TestHandleTokenDisabled(t *testing.T) {
	h := NewHandler("", "", "", "", time.Hour)
	rec := httptest.NewRecorder()
	h.HandleToken(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleTokenRateLimited(t *testing.T) {
	hash, _ := auth.HashSecret("s3cret-value")
	h := NewHandler("jwt-secret", "payroll-ui", hash, "", time.Minute)
	r := chi.NewRouter()
	h.RegisterRoutes(r, 1)

	first := postToken(r, `{"clientId":"payroll-ui","clientSecret":"nope"}`)
	if first.Code != http.StatusUnauthorized {
		t.Fatalf("expected first request to reach handler, got %d", first.Code)
	}
	second := postToken(r, `{"clientId":"payroll-ui","clientSecret":"nope"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}
