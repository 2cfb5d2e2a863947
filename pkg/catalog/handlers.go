package catalog

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

// Handler serves catalog and item type endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
}

// NewHandler creates a new catalog handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
	}
}

// RegisterRoutes mounts catalog and item type endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	catalog := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectCatalog}}
	}
	itemType := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectItemType}}
	}

	router.Handle("/item-types",
		authz.Guard(authz.RouteSpec{Name: "itemTypes.list", Require: itemType(acl.ActionRead)})(http.HandlerFunc(h.listItemTypes))).
		Methods(http.MethodGet)
	router.Handle("/item-types",
		authz.Guard(authz.RouteSpec{Name: "itemTypes.create", Require: itemType(acl.ActionCreate)})(http.HandlerFunc(h.createItemType))).
		Methods(http.MethodPost)
	router.Handle("/item-types/{id}",
		authz.Guard(authz.RouteSpec{Name: "itemTypes.get", Require: itemType(acl.ActionRead)})(http.HandlerFunc(h.getItemType))).
		Methods(http.MethodGet)

	router.Handle("/catalogs",
		authz.Guard(authz.RouteSpec{Name: "catalogs.list", Require: catalog(acl.ActionRead)})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/catalogs",
		authz.Guard(authz.RouteSpec{Name: "catalogs.create", Require: catalog(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/catalogs/{id}",
		authz.Guard(authz.RouteSpec{Name: "catalogs.get", Require: catalog(acl.ActionRead)})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/catalogs/{id}",
		authz.Guard(authz.RouteSpec{Name: "catalogs.update", Require: catalog(acl.ActionUpdate)})(http.HandlerFunc(h.update))).
		Methods(http.MethodPatch)
	router.Handle("/catalogs/{id}",
		authz.Guard(authz.RouteSpec{Name: "catalogs.delete", Require: catalog(acl.ActionDelete)})(http.HandlerFunc(h.delete))).
		Methods(http.MethodDelete)
	router.Handle("/catalogs/{id}/price-history",
		authz.Guard(authz.RouteSpec{Name: "catalogs.priceHistory", Require: catalog(acl.ActionRead)})(http.HandlerFunc(h.priceHistory))).
		Methods(http.MethodGet)
}

func (h *Handler) listItemTypes(w http.ResponseWriter, r *http.Request) {
	c := ItemTypeContract()
	spec := listquery.SpecFromRequest(r, c)

	// Item types are platform-wide, no tenant scope applies
	items := make([]*ItemType, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		it, err := scanItemType(rows)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func (h *Handler) createItemType(w http.ResponseWriter, r *http.Request) {
	var req CreateItemTypeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}

	it, err := h.store.CreateItemType(r.Context(), &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, it)
}

func (h *Handler) getItemType(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	it, err := h.store.GetItemType(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, it)
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

	withItemType := slices.Contains(spec.Relations, "itemType")

	items := make([]*Catalog, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		var (
			c            Catalog
			itemTypeName sql.NullString
		)
		dest := []any{
			&c.ID, &c.CompanyID, &c.ItemTypeID, &c.Name,
			&c.Price, &c.Unit, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		}
		if withItemType {
			dest = append(dest, &itemTypeName)
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		if itemTypeName.Valid {
			c.ItemTypeName = &itemTypeName.String
		}
		items = append(items, &c)
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

	var req CreateCatalogRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		// A tenant-scoped caller creates into their own company
		if inferred := tenant.InferredCompanyID(identity); inferred != nil {
			req.CompanyID = *inferred
		}
	}
	if !httputil.RequireNonEmpty(w, req.CompanyID, "companyId") ||
		!httputil.RequireNonEmpty(w, req.ItemTypeID, "itemTypeId") ||
		!httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if req.Price < 0 {
		httputil.WriteBadRequest(w, "price must not be negative")
		return
	}

	catalog, err := h.store.Create(r.Context(), &req, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, catalog)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	catalog, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, catalog)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCatalogRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Price != nil && *req.Price < 0 {
		httputil.WriteBadRequest(w, "price must not be negative")
		return
	}
	if req.Status != nil && *req.Status != StatusActive && *req.Status != StatusInactive {
		httputil.WriteBadRequest(w, "status must be active or inactive")
		return
	}

	catalog, err := h.store.Update(r.Context(), id, &req, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, catalog)
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

func (h *Handler) priceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	history, err := h.store.PriceHistory(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, history)
}
