package companies

import (
	"database/sql"
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/authz"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/listquery"
	"github.com/gadaihub/backoffice/pkg/tenant"
)

// Handler serves company and branch endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
}

// NewHandler creates a new company handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
	}
}

// RegisterRoutes mounts company and branch endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	company := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectCompany}}
	}
	branch := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectBranch}}
	}

	router.Handle("/companies",
		authz.Guard(authz.RouteSpec{Name: "companies.list", Require: company(acl.ActionRead)})(http.HandlerFunc(h.listCompanies))).
		Methods(http.MethodGet)
	router.Handle("/companies",
		authz.Guard(authz.RouteSpec{Name: "companies.create", Require: company(acl.ActionCreate)})(http.HandlerFunc(h.createCompany))).
		Methods(http.MethodPost)
	router.Handle("/companies/{id}",
		authz.Guard(authz.RouteSpec{Name: "companies.get", Require: company(acl.ActionRead)})(http.HandlerFunc(h.getCompany))).
		Methods(http.MethodGet)
	router.Handle("/companies/{id}",
		authz.Guard(authz.RouteSpec{Name: "companies.update", Require: company(acl.ActionUpdate)})(http.HandlerFunc(h.updateCompany))).
		Methods(http.MethodPatch)
	router.Handle("/companies/{id}",
		authz.Guard(authz.RouteSpec{Name: "companies.deactivate", Require: company(acl.ActionDelete)})(http.HandlerFunc(h.deactivateCompany))).
		Methods(http.MethodDelete)

	router.Handle("/branches",
		authz.Guard(authz.RouteSpec{Name: "branches.list", Require: branch(acl.ActionRead)})(http.HandlerFunc(h.listBranches))).
		Methods(http.MethodGet)
	router.Handle("/companies/{id}/branches",
		authz.Guard(authz.RouteSpec{Name: "branches.create", Require: branch(acl.ActionCreate)})(http.HandlerFunc(h.createBranch))).
		Methods(http.MethodPost)
	router.Handle("/branches/{id}",
		authz.Guard(authz.RouteSpec{Name: "branches.get", Require: branch(acl.ActionRead)})(http.HandlerFunc(h.getBranch))).
		Methods(http.MethodGet)
	router.Handle("/branches/{id}",
		authz.Guard(authz.RouteSpec{Name: "branches.update", Require: branch(acl.ActionUpdate)})(http.HandlerFunc(h.updateBranch))).
		Methods(http.MethodPatch)
	router.Handle("/branches/{id}",
		authz.Guard(authz.RouteSpec{Name: "branches.delete", Require: branch(acl.ActionDelete)})(http.HandlerFunc(h.deleteBranch))).
		Methods(http.MethodDelete)
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	c := CompanyContract()
	spec := listquery.SpecFromRequest(r, c)

	filters, err := tenant.ApplyScope(identity, spec.Filters)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	spec.Filters = filters

	items := make([]*Company, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		company, err := scanCompany(rows)
		if err != nil {
			return err
		}
		items = append(items, company)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") ||
		!httputil.RequireNonEmpty(w, req.Code, "code") {
		return
	}

	company, err := h.store.CreateCompany(r.Context(), &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, company)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	company, err := h.store.GetCompany(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, company)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCompanyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	company, err := h.store.UpdateCompany(r.Context(), id, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, company)
}

func (h *Handler) deactivateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeactivateCompany(r.Context(), id); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	c := BranchContract()
	spec := listquery.SpecFromRequest(r, c)

	filters, err := tenant.ApplyScope(identity, spec.Filters)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	spec.Filters = filters

	withCompany := slices.Contains(spec.Relations, "company")

	items := make([]*Branch, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		var (
			b              Branch
			address, phone sql.NullString
			companyName    sql.NullString
		)
		dest := []any{
			&b.ID, &b.CompanyID, &b.Name, &b.Code, &address, &phone,
			&b.IsActive, &b.CreatedAt, &b.UpdatedAt,
		}
		if withCompany {
			dest = append(dest, &companyName)
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		b.Address = address.String
		b.Phone = phone.String
		if companyName.Valid {
			b.CompanyName = &companyName.String
		}
		items = append(items, &b)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	companyID, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req CreateBranchRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") ||
		!httputil.RequireNonEmpty(w, req.Code, "code") {
		return
	}

	branch, err := h.store.CreateBranch(r.Context(), companyID, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, branch)
}

func (h *Handler) getBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	branch, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, branch)
}

func (h *Handler) updateBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBranchRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	branch, err := h.store.UpdateBranch(r.Context(), id, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, branch)
}

func (h *Handler) deleteBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteBranch(r.Context(), id); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
