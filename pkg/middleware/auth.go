package middleware

import (
	"net/http"
	"strings"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/observability"
)

// AuthMiddleware resolves bearer session tokens into an Identity.
type AuthMiddleware struct {
	service *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(service *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{service: service}
}

// Handler attaches the caller's Identity to the request context. Requests
// without an Authorization header pass through anonymously; the per-route
// guard decides whether that is acceptable. A header that is present but
// invalid is rejected here with 401.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		identity, err := m.service.IdentityFromToken(r.Context(), parts[1])
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Debug("token rejected")
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := auth.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
