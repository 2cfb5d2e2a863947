// Package customers manages pledge customers. A customer belongs to a
// company and optionally a branch, is unique per company by national
// id, and carries a blacklist flag that front-office flows check before
// accepting new pledges.
package customers

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Customer is a pledge customer of one company.
type Customer struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	BranchID      *string   `json:"branchId,omitempty"`
	NationalID    string    `json:"nationalId"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsBlacklisted bool      `json:"isBlacklisted"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateCustomerRequest is the payload for creating a customer.
type CreateCustomerRequest struct {
	CompanyID  string  `json:"companyId"`
	BranchID   *string `json:"branchId"`
	NationalID string  `json:"nationalId"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
}

// UpdateCustomerRequest is the payload for updating a customer.
type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	BranchID *string `json:"branchId"`
}

// BlacklistRequest flips the blacklist flag.
type BlacklistRequest struct {
	Blacklisted bool `json:"blacklisted"`
}

// Contract describes how customer list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "customers",
		Alias:   "cu",
		Columns: []string{"id", "company_id", "branch_id", "national_id", "name", "phone", "address", "is_blacklisted", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			"companyId":     "company_id",
			"branchId":      "branch_id",
			"nationalId":    "national_id",
			"isBlacklisted": "is_blacklisted",
		},
		SortColumns: map[string]string{
			"name":      "name",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
