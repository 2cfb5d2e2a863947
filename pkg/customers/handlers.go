package customers

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

// Handler serves customer endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
	trail *audit.Recorder
}

// NewHandler creates a new customer handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
		trail: audit.NewRecorder(db),
	}
}

// RegisterRoutes mounts customer endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	requirement := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectCustomer}}
	}

	router.Handle("/customers",
		authz.Guard(authz.RouteSpec{Name: "customers.list", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/customers",
		authz.Guard(authz.RouteSpec{Name: "customers.create", Require: requirement(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/customers/{id}",
		authz.Guard(authz.RouteSpec{Name: "customers.get", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/customers/{id}",
		authz.Guard(authz.RouteSpec{Name: "customers.update", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.update))).
		Methods(http.MethodPatch)
	router.Handle("/customers/{id}",
		authz.Guard(authz.RouteSpec{Name: "customers.delete", Require: requirement(acl.ActionDelete)})(http.HandlerFunc(h.delete))).
		Methods(http.MethodDelete)
	router.Handle("/customers/{id}/blacklist",
		authz.Guard(authz.RouteSpec{Name: "customers.blacklist", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.blacklist))).
		Methods(http.MethodPut)
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

	items := make([]*Customer, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		customer, err := scanCustomer(rows)
		if err != nil {
			return err
		}
		items = append(items, customer)
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

	var req CreateCustomerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		if inferred := tenant.InferredCompanyID(identity); inferred != nil {
			req.CompanyID = *inferred
		}
	}
	if !httputil.RequireNonEmpty(w, req.CompanyID, "companyId") ||
		!httputil.RequireNonEmpty(w, req.NationalID, "nationalId") ||
		!httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}

	customer, err := h.store.Create(r.Context(), &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, customer)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, customer)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	customer, err := h.store.Update(r.Context(), id, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, customer)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *Handler) blacklist(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req BlacklistRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	customer, err := h.store.SetBlacklisted(r.Context(), id, req.Blacklisted)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "customers.blacklist", acl.SubjectCustomer, customer.ID, customer.CompanyID)
	httputil.WriteSuccess(w, customer)
}
