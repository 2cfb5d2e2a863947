// Package audit keeps a trail of who did what to which record. Review
// actions (approve, reject, disburse, submit, complete, blacklist)
// write one event row each; the trail is queryable through the standard
// list endpoint and guarded as a Report read.
package audit

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Event is a single audit trail entry.
type Event struct {
	ID         int64     `json:"id"`
	Event      string    `json:"event"`
	ActorID    *int64    `json:"actorId,omitempty"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	Subject    string    `json:"subject"`
	ResourceID string    `json:"resourceId"`
	CompanyID  *string   `json:"companyId,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Contract describes how audit trail list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "audit_events",
		Alias:   "ae",
		Columns: []string{"id", "event", "actor_id", "actor_email", "subject", "resource_id", "company_id", "request_id", "occurred_at"},
		FilterColumns: map[string]string{
			"companyId":  "company_id",
			"actorId":    "actor_id",
			"event":      "event",
			"subject":    "subject",
			"resourceId": "resource_id",
		},
		SortColumns: map[string]string{
			"occurredAt": "occurred_at",
			"event":      "event",
		},
		DefaultSort: listquery.Sort{Column: "occurred_at", Desc: true},
	}
}
