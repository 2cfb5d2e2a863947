// Package deposits manages cash deposit requests: a branch hands cash
// over to the company, the request is reviewed, and disbursement closes
// the loop. The workflow mirrors capital top-ups with an extra branch
// dimension.
package deposits

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Deposit statuses. Transitions: pending -> approved -> disbursed, or
// pending -> rejected.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusDisbursed = "disbursed"
)

// Deposit is one cash deposit request.
type Deposit struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"companyId"`
	BranchID        *string    `json:"branchId,omitempty"`
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

// CreateDepositRequest is the payload for requesting a deposit.
type CreateDepositRequest struct {
	CompanyID string  `json:"companyId"`
	BranchID  *string `json:"branchId"`
	Amount    float64 `json:"amount"`
	Notes     string  `json:"notes"`
}

// RejectRequest carries the reviewer's reason for turning a request down.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Contract describes how deposit list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table: "cash_deposits",
		Alias: "cd",
		Columns: []string{
			"id", "company_id", "branch_id", "amount", "notes", "status",
			"requested_by", "approved_by", "approved_at",
			"rejected_at", "rejection_reason",
			"disbursed_by", "disbursed_at", "created_at", "updated_at",
		},
		FilterColumns: map[string]string{
			"companyId": "company_id",
			"branchId":  "branch_id",
			"status":    "status",
		},
		SortColumns: map[string]string{
			"amount":    "amount",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
