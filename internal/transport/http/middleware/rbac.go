package middleware

import (
	"net/http"

	"netpay/internal/transport/http/api"
)

// RequireScope rejects callers whose token does not grant scope.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !principal.HasScope(scope) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient scope", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
