package authhandler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"netpay/internal/auth"
	"netpay/internal/requestctx"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
	"netpay/internal/transport/http/shared"
)

// Handler issues bearer tokens to the single configured API client.
type Handler struct {
	Secret     string
	ClientID   string
	SecretHash string
	TOTPSecret string
	TTL        time.Duration
	logger     *zap.Logger
}

func NewHandler(secret, clientID, secretHash, totpSecret string, ttl time.Duration) *Handler {
	return &Handler{
		Secret:     secret,
		ClientID:   clientID,
		SecretHash: secretHash,
		TOTPSecret: totpSecret,
		TTL:        ttl,
		logger:     zap.L().Named("auth.http"),
	}
}

type tokenRequest struct {
	ClientID     string `json:"clientId" validate:"required,max=128"`
	ClientSecret string `json:"clientSecret" validate:"required,max=256"`
	MFACode      string `json:"mfaCode" validate:"omitempty,len=6,numeric"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	Scope       string `json:"scope"`
}

func (h *Handler) RegisterRoutes(r chi.Router, perMinute int) {
	r.With(middleware.RateLimit(perMinute, middleware.WithKeyFunc(middleware.ClientIPKey))).Post("/auth/token", h.HandleToken)
}

func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if h.Secret == "" || h.ClientID == "" || h.SecretHash == "" {
		api.Fail(w, http.StatusServiceUnavailable, "auth_disabled", "token issuance is not configured", reqID)
		return
	}

	var payload tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, reqID) {
		return
	}

	logger := requestctx.Logger(r.Context(), h.logger)
	if err := h.authenticate(payload); err != nil {
		logger.Info("token request rejected", zap.String("clientId", payload.ClientID), zap.Error(err))
		if errors.Is(err, auth.ErrInvalidMFACode) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", reqID)
			return
		}
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{ClientID: h.ClientID, Scopes: auth.DefaultScopes}, h.TTL)
	if err != nil {
		logger.Error("token signing failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.TTL.Seconds()),
		Scope:       strings.Join(auth.DefaultScopes, " "),
	}, reqID)
}

func (h *Handler) authenticate(payload tokenRequest) error {
	if subtle.ConstantTimeCompare([]byte(payload.ClientID), []byte(h.ClientID)) != 1 {
		return auth.ErrInvalidCredentials
	}
	if err := auth.CheckSecret(h.SecretHash, payload.ClientSecret); err != nil {
		return err
	}
	return auth.CheckTOTP(h.TOTPSecret, payload.MFACode)
}
