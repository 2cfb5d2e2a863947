// Package capital manages capital top-up requests. A company asks the
// platform for working capital; the request sits pending until a
// platform operator approves or rejects it, and an approved request is
// closed out by recording the disbursement.
package capital

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Top-up statuses. Transitions: pending -> approved -> disbursed, or
// pending -> rejected.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusDisbursed = "disbursed"
)

// Topup is one capital top-up request.
type Topup struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"companyId"`
	Amount          float64    `json:"amount"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	RequestedBy     *int64     `json:"requestedBy,omitempty"`
	ApprovedBy      *int64     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	DisbursedBy     *int64     `json:"disbursedBy,omitempty"`
	DisbursedAt     *time.Time `json:"disbursedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateTopupRequest is the payload for requesting a top-up.
type CreateTopupRequest struct {
	CompanyID string  `json:"companyId"`
	Amount    float64 `json:"amount"`
	Notes     string  `json:"notes"`
}

// RejectRequest carries the reviewer's reason for turning a request down.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Contract describes how top-up list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table: "capital_topups",
		Alias: "ct",
		Columns: []string{
			"id", "company_id", "amount", "notes", "status",
			"requested_by", "approved_by", "approved_at",
			"rejected_at", "rejection_reason",
			"disbursed_by", "disbursed_at", "created_at", "updated_at",
		},
		FilterColumns: map[string]string{
			"companyId": "company_id",
			"status":    "status",
		},
		SortColumns: map[string]string{
			"amount":    "amount",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
