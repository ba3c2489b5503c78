package httpx

import (
	"net/http"
	"strings"

	"github.com/tetherchat/tether/pkg/identity"
	"github.com/tetherchat/tether/pkg/slogx"
)

// AuthnMiddleware resolves the bearer credential into a Principal via
// the identity provider and injects it into the request context. The
// request never reaches the wrapped handler without a valid principal.
func AuthnMiddleware(provider identity.Provider) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			principal, err := provider.Verify(ctx, raw)
			if err != nil {
				log.Warn("credential verification failed", "err", err)
				writeBearerError(w, "credential verification failed")
				return
			}

			ctx = ContextWithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
