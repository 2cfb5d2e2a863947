package httputil

import (
	"errors"
	"net/http"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/listquery"
	"github.com/gadaihub/backoffice/pkg/storage"
	"github.com/gadaihub/backoffice/pkg/tenant"
)

// RespondError maps a service error onto the HTTP response, keeping the
// error taxonomy consistent across every resource module:
//
//	invalid query (unknown filter/relation field)  -> 400, naming the field
//	invalid credentials / expired token            -> 401
//	cross-tenant filter by a tenant-scoped caller  -> 403
//	missing row                                    -> 404
//	uniqueness conflict                            -> 409
//	anything else (storage failures included)      -> 500, generic body
//
// Authorization denials never come through here; the guard middleware
// writes those before a handler runs.
func RespondError(w http.ResponseWriter, err error) {
	var invalid *listquery.InvalidQueryError
	switch {
	case errors.As(err, &invalid):
		WriteBadRequest(w, invalid.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrUserInactive):
		WriteUnauthorized(w, err.Error())
	case errors.Is(err, tenant.ErrCrossTenant):
		WriteForbidden(w, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, storage.ErrConflict):
		WriteConflict(w, err.Error())
	default:
		WriteInternalError(w)
	}
}
