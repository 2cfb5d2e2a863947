package audit

import (
	"context"
	"database/sql"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/observability"
)

// Recorder writes audit events. Insert failures are logged, never
// surfaced: the trail must not fail the request it describes.
type Recorder struct {
	db *sql.DB
}

// NewRecorder creates a new audit recorder
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// Record writes one event for the action named by event (for example
// "capital.approve") against the given record. Actor and request id
// come from the context; companyID may be empty for platform records.
func (r *Recorder) Record(ctx context.Context, event string, subject acl.Subject, resourceID, companyID string) {
	var (
		actorID    *int64
		actorEmail string
	)
	if identity := auth.IdentityFromContext(ctx); identity != nil {
		actorID = &identity.UserID
		actorEmail = identity.Email
	}

	var company *string
	if companyID != "" {
		company = &companyID
	}

	query := `
		INSERT INTO audit_events (event, actor_id, actor_email, subject, resource_id, company_id, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		event, actorID, actorEmail, string(subject), resourceID, company,
		observability.GetRequestID(ctx))
	if err != nil {
		observability.FromContext(ctx).WithError(err).
			WithField("event", event).Error("failed to record audit event")
	}
}
