package deposits

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

// Handler serves cash deposit endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
	trail *audit.Recorder
}

// NewHandler creates a new deposit handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
		trail: audit.NewRecorder(db),
	}
}

// RegisterRoutes mounts deposit endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	requirement := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectCashDeposit}}
	}

	router.Handle("/cash-deposits",
		authz.Guard(authz.RouteSpec{Name: "cashDeposits.list", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/cash-deposits",
		authz.Guard(authz.RouteSpec{Name: "cashDeposits.create", Require: requirement(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/cash-deposits/{id}",
		authz.Guard(authz.RouteSpec{Name: "cashDeposits.get", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/cash-deposits/{id}/approve",
		authz.Guard(authz.RouteSpec{Name: "cashDeposits.approve", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.approve))).
		Methods(http.MethodPost)
	router.Handle("/cash-deposits/{id}/reject",
		authz.Guard(authz.RouteSpec{Name: "cashDeposits.reject", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.reject))).
		Methods(http.MethodPost)
	router.Handle("/cash-deposits/{id}/disburse",
		authz.Guard(authz.RouteSpec{Name: "cashDeposits.disburse", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.disburse))).
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

	items := make([]*Deposit, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return err
		}
		items = append(items, deposit)
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

	var req CreateDepositRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		if inferred := tenant.InferredCompanyID(identity); inferred != nil {
			req.CompanyID = *inferred
		}
	}
	if req.BranchID == nil && identity.BranchID != nil {
		req.BranchID = identity.BranchID
	}
	if !httputil.RequireNonEmpty(w, req.CompanyID, "companyId") {
		return
	}
	if req.Amount <= 0 {
		httputil.WriteBadRequest(w, "amount must be positive")
		return
	}

	deposit, err := h.store.Create(r.Context(), &req, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, deposit)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	deposit, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, deposit)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	deposit, err := h.store.Approve(r.Context(), id, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "cashDeposits.approve", acl.SubjectCashDeposit, deposit.ID, deposit.CompanyID)
	httputil.WriteSuccess(w, deposit)
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

	deposit, err := h.store.Reject(r.Context(), id, identity.UserID, req.Reason)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "cashDeposits.reject", acl.SubjectCashDeposit, deposit.ID, deposit.CompanyID)
	httputil.WriteSuccess(w, deposit)
}

func (h *Handler) disburse(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	deposit, err := h.store.Disburse(r.Context(), id, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "cashDeposits.disburse", acl.SubjectCashDeposit, deposit.ID, deposit.CompanyID)
	httputil.WriteSuccess(w, deposit)
}
