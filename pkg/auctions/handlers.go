package auctions

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

// Handler serves auction batch endpoints.
type Handler struct {
	store *Store
	lists *listquery.Builder
	trail *audit.Recorder
}

// NewHandler creates a new auction handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{
		store: NewStore(db),
		lists: listquery.NewBuilder(db),
		trail: audit.NewRecorder(db),
	}
}

// RegisterRoutes mounts batch endpoints on the router. Validation
// verdicts require update on AuctionBatch; drafting and submitting only
// need create.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	requirement := func(action acl.Action) []acl.Requirement {
		return []acl.Requirement{{Action: action, Subject: acl.SubjectAuctionBatch}}
	}

	router.Handle("/auction-batches",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.list", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.list))).
		Methods(http.MethodGet)
	router.Handle("/auction-batches",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.create", Require: requirement(acl.ActionCreate)})(http.HandlerFunc(h.create))).
		Methods(http.MethodPost)
	router.Handle("/auction-batches/{id}",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.get", Require: requirement(acl.ActionRead)})(http.HandlerFunc(h.get))).
		Methods(http.MethodGet)
	router.Handle("/auction-batches/{id}",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.update", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.update))).
		Methods(http.MethodPatch)
	router.Handle("/auction-batches/{id}",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.delete", Require: requirement(acl.ActionDelete)})(http.HandlerFunc(h.delete))).
		Methods(http.MethodDelete)
	router.Handle("/auction-batches/{id}/submit",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.submit", Require: requirement(acl.ActionCreate)})(http.HandlerFunc(h.submit))).
		Methods(http.MethodPost)
	router.Handle("/auction-batches/{id}/approve",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.approve", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.approve))).
		Methods(http.MethodPost)
	router.Handle("/auction-batches/{id}/reject",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.reject", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.reject))).
		Methods(http.MethodPost)
	router.Handle("/auction-batches/{id}/complete",
		authz.Guard(authz.RouteSpec{Name: "auctionBatches.complete", Require: requirement(acl.ActionUpdate)})(http.HandlerFunc(h.complete))).
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

	items := make([]*Batch, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		batch, err := scanBatch(rows)
		if err != nil {
			return err
		}
		items = append(items, batch)
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

	var req CreateBatchRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		if inferred := tenant.InferredCompanyID(identity); inferred != nil {
			req.CompanyID = *inferred
		}
	}
	if !httputil.RequireNonEmpty(w, req.CompanyID, "companyId") ||
		!httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}

	batch, err := h.store.Create(r.Context(), &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteCreated(w, batch)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	batch, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, batch)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBatchRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	batch, err := h.store.Update(r.Context(), id, &req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteSuccess(w, batch)
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

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	batch, err := h.store.Submit(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "auctionBatches.submit", acl.SubjectAuctionBatch, batch.ID, batch.CompanyID)
	httputil.WriteSuccess(w, batch)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	batch, err := h.store.Approve(r.Context(), id, identity.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "auctionBatches.approve", acl.SubjectAuctionBatch, batch.ID, batch.CompanyID)
	httputil.WriteSuccess(w, batch)
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

	batch, err := h.store.Reject(r.Context(), id, identity.UserID, req.Reason)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "auctionBatches.reject", acl.SubjectAuctionBatch, batch.ID, batch.CompanyID)
	httputil.WriteSuccess(w, batch)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	batch, err := h.store.Complete(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.trail.Record(r.Context(), "auctionBatches.complete", acl.SubjectAuctionBatch, batch.ID, batch.CompanyID)
	httputil.WriteSuccess(w, batch)
}
