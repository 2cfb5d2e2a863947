// Package companies manages tenant companies and their branches. A
// company is the tenant boundary: every tenant-owned resource carries a
// company id, and owners are linked through users.owned_company_id.
package companies

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Company is a tenant.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Branch is an outlet of a company.
type Branch struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// CompanyName is populated when the company relation is expanded.
	CompanyName *string `json:"companyName,omitempty"`
}

// CreateCompanyRequest is the payload for creating a company.
type CreateCompanyRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// UpdateCompanyRequest is the payload for updating a company.
type UpdateCompanyRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

// CreateBranchRequest is the payload for creating a branch.
type CreateBranchRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// UpdateBranchRequest is the payload for updating a branch.
type UpdateBranchRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

// CompanyContract describes how company list queries map onto SQL.
func CompanyContract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "companies",
		Alias:   "c",
		Columns: []string{"id", "name", "code", "address", "phone", "is_active", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			// The tenant filter maps onto the company's own id so scoped
			// callers only ever see their own company
			"companyId": "id",
			"code":      "code",
			"isActive":  "is_active",
		},
		SortColumns: map[string]string{
			"name":      "name",
			"code":      "code",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}

// BranchContract describes how branch list queries map onto SQL.
func BranchContract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "branches",
		Alias:   "b",
		Columns: []string{"id", "company_id", "name", "code", "address", "phone", "is_active", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			"companyId": "company_id",
			"code":      "code",
			"isActive":  "is_active",
		},
		Relations: map[string]listquery.Join{
			"company": {
				Table:   "companies",
				Alias:   "co",
				On:      "co.id = b.company_id",
				Columns: []string{"name"},
			},
		},
		SortColumns: map[string]string{
			"name":      "name",
			"code":      "code",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
