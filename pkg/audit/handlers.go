package audit

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

// Handler serves the audit trail.
type Handler struct {
	lists *listquery.Builder
}

// NewHandler creates a new audit handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{lists: listquery.NewBuilder(db)}
}

// RegisterRoutes mounts the audit trail endpoint on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Handle("/audit-events",
		authz.Guard(authz.RouteSpec{
			Name:    "audit.list",
			Require: []acl.Requirement{{Action: acl.ActionRead, Subject: acl.SubjectReport}},
		})(http.HandlerFunc(h.list))).
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

	items := make([]*Event, 0)
	meta, err := h.lists.List(r.Context(), c, spec, func(rows *sql.Rows) error {
		event, err := scanEvent(rows)
		if err != nil {
			return err
		}
		items = append(items, event)
		return nil
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteList(w, items, meta)
}

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var (
		e                 Event
		actorID           sql.NullInt64
		actorEmail, reqID sql.NullString
		companyID         sql.NullString
	)
	err := row.Scan(&e.ID, &e.Event, &actorID, &actorEmail, &e.Subject,
		&e.ResourceID, &companyID, &reqID, &e.OccurredAt)
	if err != nil {
		return nil, err
	}
	if actorID.Valid {
		e.ActorID = &actorID.Int64
	}
	e.ActorEmail = actorEmail.String
	e.RequestID = reqID.String
	if companyID.Valid {
		e.CompanyID = &companyID.String
	}
	return &e, nil
}
