package capital

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/audit"
	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/authz"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/listquery"
	"github.com/gadaihub/backoffice/pkg/tenant"
)

// Handler serves capital top-up endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
	trail *audit.Recorder
}

// NewHandler creates a new capital handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
		trail: audit.NewRecorder(db),
	}
}

// RegisterRoutes mounts top-up endpoints on the router. Approval,
// rejection and disbursement all require update on CapitalTopup;
// create-only roles can submit but not review.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	requirement := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectCapitalTopup}}
	}

	router.Handle("/capital-topups",
		authz.Guard(authz.RouteSpec{Name: "capitalTopups.list", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/capital-topups",
		authz.Guard(authz.RouteSpec{Name: "capitalTopups.create", Require: requirement(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/capital-topups/{id}",
		authz.Guard(authz.RouteSpec{Name: "capitalTopups.get", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/capital-topups/{id}/approve",
		authz.Guard(authz.RouteSpec{Name: "capitalTopups.approve", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.approve))).
		Methods(http.MethodPost)
	router.Handle("/capital-topups/{id}/reject",
		authz.Guard(authz.RouteSpec{Name: "capitalTopups.reject", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.reject))).
		Methods(http.MethodPost)
	router.Handle("/capital-topups/{id}/disburse",
		authz.Guard(authz.RouteSpec{Name: "capitalTopups.disburse", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.disburse))).
		Methods(http.MethodPost)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	c := Contract()
	spec := listquery.SpecFromRequest(r, c)

	filters, err := tenant.ApplyScope(identity, spec.Filters)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	spec.Filters = filters

	items := make([]*Topup, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		topup, err := scanTopup(rows)
		if err != nil {
			return err
		}
		items = append(items, topup)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req CreateTopupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		if inferred := tenant.InferredCompanyID(identity); inferred != nil {
			req.CompanyID = *inferred
		}
	}
	if !httputil.RequireNonEmpty(w, req.CompanyID, "companyId") {
		return
	}
	if req.Amount <= 0 {
		httputil.WriteBadRequest(w, "amount must be positive")
		return
	}

	topup, err := h.store.Create(r.Context(), &req, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, topup)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	topup, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, topup)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	topup, err := h.store.Approve(r.Context(), id, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "capitalTopups.approve", acl.SubjectCapitalTopup, topup.ID, topup.CompanyID)
	httputil.WriteSuccess(w, topup)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Reason, "reason") {
		return
	}

	topup, err := h.store.Reject(r.Context(), id, identity.UserID, req.Reason)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "capitalTopups.reject", acl.SubjectCapitalTopup, topup.ID, topup.CompanyID)
	httputil.WriteSuccess(w, topup)
}

func (h *Handler) disburse(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	topup, err := h.store.Disburse(r.Context(), id, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "capitalTopups.disburse", acl.SubjectCapitalTopup, topup.ID, topup.CompanyID)
	httputil.WriteSuccess(w, topup)
}
