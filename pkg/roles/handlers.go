package roles

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/authz"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/listquery"
	"github.com/gadaihub/backoffice/pkg/tenant"
)

// Handler serves role endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
}

// NewHandler creates a new role handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
	}
}

// RegisterRoutes mounts role endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	read := []acl.Requirement{{Action: acl.ActionRead, Subject: acl.SubjectRole}}
	manage := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectRole}}
	}

	router.Handle("/roles",
		authz.Guard(authz.RouteSpec{Name: "roles.list", Require: read})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/roles",
		authz.Guard(authz.RouteSpec{Name: "roles.create", Require: manage(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/roles/{id}",
		authz.Guard(authz.RouteSpec{Name: "roles.get", Require: read})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/roles/{id}",
		authz.Guard(authz.RouteSpec{Name: "roles.update", Require: manage(acl.ActionUpdate)})(http.HandlerFunc(h.update))).
		Methods(http.MethodPatch)
	router.Handle("/roles/{id}",
		authz.Guard(authz.RouteSpec{Name: "roles.delete", Require: manage(acl.ActionDelete)})(http.HandlerFunc(h.delete))).
		Methods(http.MethodDelete)
	router.Handle("/roles/{id}/users/{userId}",
		authz.Guard(authz.RouteSpec{Name: "roles.assign", Require: manage(acl.ActionUpdate)})(http.HandlerFunc(h.assign))).
		Methods(http.MethodPost)
	router.Handle("/roles/{id}/users/{userId}",
		authz.Guard(authz.RouteSpec{Name: "roles.revoke", Require: manage(acl.ActionUpdate)})(http.HandlerFunc(h.revoke))).
		Methods(http.MethodDelete)
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

	items := make([]*Role, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		role, err := scanRole(rows)
		if err != nil {
			return err
		}
		items = append(items, role)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Code, "code") || !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	role, err := h.store.Create(r.Context(), &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, role)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	role, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Rules != nil {
		if err := validateRules(req.Rules); err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
	}

	role, err := h.store.Update(r.Context(), id, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, role)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathInt64OrError(w, r, "userId")
	if !ok {
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if err := h.store.Assign(r.Context(), userID, roleID, identity.UserID); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathInt64OrError(w, r, "userId")
	if !ok {
		return
	}

	if err := h.store.Revoke(r.Context(), userID, roleID); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
