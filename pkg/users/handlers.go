package users

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

// Handler serves user endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
}

// NewHandler creates a new user handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
	}
}

// RegisterRoutes mounts user endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	requirement := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectUser}}
	}

	router.Handle("/users",
		authz.Guard(authz.RouteSpec{Name: "users.list", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/users",
		authz.Guard(authz.RouteSpec{Name: "users.create", Require: requirement(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/users/{id}",
		authz.Guard(authz.RouteSpec{Name: "users.get", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/users/{id}",
		authz.Guard(authz.RouteSpec{Name: "users.update", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.update))).
		Methods(http.MethodPatch)
	router.Handle("/users/{id}",
		authz.Guard(authz.RouteSpec{Name: "users.deactivate", Require: requirement(acl.ActionDelete)})(http.HandlerFunc(h.deactivate))).
		Methods(http.MethodDelete)
	router.Handle("/users/{id}/password",
		authz.Guard(authz.RouteSpec{Name: "users.resetPassword", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.resetPassword))).
		Methods(http.MethodPut)
	// A caller can always read their own profile
	router.Handle("/me",
		authz.Guard(authz.RouteSpec{Name: "users.me"})(http.HandlerFunc(h.me))).
		Methods(http.MethodGet)
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

	withCompany := slices.Contains(spec.Relations, "company")

	items := make([]*User, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		var (
			user        User
			companyName sql.NullString
		)
		dest := []any{
			&user.ID, &user.UUID, &user.Email, &user.FullName,
			&user.CompanyID, &user.OwnedCompanyID, &user.BranchID,
			&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		}
		if withCompany {
			dest = append(dest, &companyName)
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		if companyName.Valid {
			user.CompanyName = &companyName.String
		}
		items = append(items, &user)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.FullName, "fullName") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	user, err := h.store.Create(r.Context(), &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, user)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.store.Update(r.Context(), id, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Deactivate(r.Context(), id); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.NewPassword, "newPassword") {
		return
	}

	if err := h.store.ResetPassword(r.Context(), id, req.NewPassword); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	user, err := h.store.Get(r.Context(), identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}
