package authz

import (
	"errors"
	"net/http"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/observability"
)

// Guard creates middleware enforcing a route's authorization spec. It runs
// before the handler and before any data access; denials never reach the
// handler.
func Guard(spec RouteSpec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())

			if err := Authorize(identity, spec); err != nil {
				observability.RecordAuthzDenial(spec.Name, errors.Is(err, ErrUnauthenticated))

				if errors.Is(err, ErrUnauthenticated) {
					httputil.WriteUnauthorized(w, err.Error())
					return
				}
				httputil.WriteForbidden(w, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
