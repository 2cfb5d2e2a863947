// Package auctions manages auction batches: the lots of forfeited
// collateral a company groups for sale. A batch is drafted, submitted
// for validation, approved or rejected by a platform operator, and an
// approved batch is marked completed once the sale has run.
package auctions

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Batch statuses. Transitions: draft -> pending_validation ->
// approved -> completed, or pending_validation -> rejected. A rejected
// batch goes back to draft on resubmission.
const (
	StatusDraft             = "draft"
	StatusPendingValidation = "pending_validation"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
	StatusCompleted         = "completed"
)

// Batch is one auction batch.
type Batch struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"companyId"`
	BranchID        *string    `json:"branchId,omitempty"`
	Name            string     `json:"name"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	ValidatedBy     *int64     `json:"validatedBy,omitempty"`
	ValidatedAt     *time.Time `json:"validatedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateBatchRequest is the payload for drafting a batch.
type CreateBatchRequest struct {
	CompanyID string  `json:"companyId"`
	BranchID  *string `json:"branchId"`
	Name      string  `json:"name"`
	Notes     string  `json:"notes"`
}

// UpdateBatchRequest edits a draft batch.
type UpdateBatchRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

// RejectRequest carries the validator's reason for turning a batch down.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Contract describes how batch list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table: "auction_batches",
		Alias: "ab",
		Columns: []string{
			"id", "company_id", "branch_id", "name", "notes", "status",
			"submitted_at", "validated_by", "validated_at",
			"rejection_reason", "completed_at", "created_at", "updated_at",
		},
		FilterColumns: map[string]string{
			"companyId": "company_id",
			"branchId":  "branch_id",
			"status":    "status",
		},
		SortColumns: map[string]string{
			"name":      "name",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
