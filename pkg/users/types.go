// Package users manages back-office user accounts: CRUD, company and
// branch membership, activation and password resets. Session issuance
// lives in pkg/auth; role assignment in pkg/roles.
package users

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// User is a back-office account.
type User struct {
	ID             int64     `json:"id"`
	UUID           string    `json:"uuid"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	CompanyID      *string   `json:"companyId,omitempty"`
	OwnedCompanyID *string   `json:"ownedCompanyId,omitempty"`
	BranchID       *string   `json:"branchId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// CompanyName is populated when the company relation is expanded
	CompanyName *string `json:"companyName,omitempty"`
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	Password  string  `json:"password"`
	CompanyID *string `json:"companyId"`
	BranchID  *string `json:"branchId"`
}

// UpdateUserRequest is the payload for updating a user.
type UpdateUserRequest struct {
	FullName  *string `json:"fullName"`
	CompanyID *string `json:"companyId"`
	BranchID  *string `json:"branchId"`
	IsActive  *bool   `json:"isActive"`
}

// ResetPasswordRequest carries the replacement password.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// Contract describes how user list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "users",
		Alias:   "u",
		Columns: []string{"id", "uuid", "email", "full_name", "company_id", "owned_company_id", "branch_id", "is_active", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			"companyId": "company_id",
			"branchId":  "branch_id",
			"email":     "email",
			"isActive":  "is_active",
		},
		Relations: map[string]listquery.Join{
			"company": {
				Table:   "companies",
				Alias:   "co",
				On:      "co.id = u.company_id",
				Columns: []string{"name"},
			},
		},
		SortColumns: map[string]string{
			"email":     "email",
			"fullName":  "full_name",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
