package uploads

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/authz"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/observability"
	"github.com/gadaihub/backoffice/pkg/tenant"
)

// SignUploadRequest asks for a presigned PUT.
type SignUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// SignDownloadRequest asks for a presigned GET of an existing key.
type SignDownloadRequest struct {
	Key string `json:"key"`
}

// Handler serves presigned URL endpoints.
type Handler struct {
	signer  Signer
	metrics *observability.Metrics
}

// NewHandler creates a new uploads handler. metrics may be nil.
func NewHandler(signer Signer, metrics *observability.Metrics) *Handler {
	return &Handler{signer: signer, metrics: metrics}
}

// RegisterRoutes mounts upload endpoints on the router. Both routes only
// require an authenticated caller: keys are namespaced per tenant and
// grant no access beyond the single signed object.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Handle("/uploads/sign",
		authz.Guard(authz.RouteSpec{Name: "uploads.sign"})(http.HandlerFunc(h.signUpload))).
		Methods(http.MethodPost)
	router.Handle("/uploads/sign-download",
		authz.Guard(authz.RouteSpec{Name: "uploads.signDownload"})(http.HandlerFunc(h.signDownload))).
		Methods(http.MethodPost)
}

func (h *Handler) signUpload(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req SignUploadRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Filename, "filename") ||
		!httputil.RequireNonEmpty(w, req.ContentType, "contentType") {
		return
	}
	if req.Size <= 0 {
		httputil.WriteBadRequest(w, "size must be positive")
		return
	}

	companyID := ""
	if inferred := tenant.InferredCompanyID(identity); inferred != nil {
		companyID = *inferred
	}

	signed, err := h.signer.SignUpload(r.Context(), ObjectKey(companyID, req.Filename), req.ContentType, req.Size)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.UploadURLsSignedTotal.WithLabelValues("upload").Inc()
	}

	httputil.WriteSuccess(w, signed)
}

func (h *Handler) signDownload(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req SignDownloadRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Key, "key") {
		return
	}

	// A tenant-scoped caller can only read back their own prefix
	if inferred := tenant.InferredCompanyID(identity); inferred != nil {
		if !keyInTenant(req.Key, *inferred) {
			httputil.WriteForbidden(w, "key belongs to another company")
			return
		}
	}

	signed, err := h.signer.SignDownload(r.Context(), req.Key)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.UploadURLsSignedTotal.WithLabelValues("download").Inc()
	}

	httputil.WriteSuccess(w, signed)
}

func keyInTenant(key, companyID string) bool {
	return len(key) > len(companyID) && key[:len(companyID)] == companyID && key[len(companyID)] == '/'
}
