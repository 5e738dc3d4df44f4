package transport

import (
	"net/http"

	"github.com/mtxos/opsboard/internal/identity"
)

// AuthMiddleware enforces bearer API key authentication.
func AuthMiddleware(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := identity.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token", nil)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil || principal.WorkspaceID == "" {
				WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "invalid bearer token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), principal)))
		})
	}
}

// StaticPrincipalMiddleware acts as a fixed principal when auth is disabled.
func StaticPrincipalMiddleware(principal identity.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), principal)))
		})
	}
}
