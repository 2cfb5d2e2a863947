// Package roles manages permission roles. Built-in system roles are
// immutable; companies may define their own custom roles whose permission
// rules are stored as a JSON rule array.
package roles

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/listquery"
)

// Role is a named bundle of permission rules.
type Role struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CompanyID   *string    `json:"companyId,omitempty"`
	Rules       []acl.Rule `json:"permissions"`
	IsSystem    bool       `json:"isSystem"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateRoleRequest is the payload for creating a custom role.
type CreateRoleRequest struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CompanyID   *string    `json:"companyId"`
	Rules       []acl.Rule `json:"permissions"`
}

// UpdateRoleRequest is the payload for updating a custom role.
type UpdateRoleRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Rules       []acl.Rule `json:"permissions"`
	IsActive    *bool      `json:"isActive"`
}

// Validate rejects rules outside the closed action/subject enumerations.
func (r *CreateRoleRequest) Validate() error {
	return validateRules(r.Rules)
}

func validateRules(rules []acl.Rule) error {
	for _, rule := range rules {
		if !acl.ValidAction(rule.Action) {
			return fmt.Errorf("unknown action %q", rule.Action)
		}
		if !acl.ValidSubject(rule.Subject) {
			return fmt.Errorf("unknown subject %q", rule.Subject)
		}
	}
	return nil
}

func marshalRules(rules []acl.Rule) ([]byte, error) {
	if rules == nil {
		rules = []acl.Rule{}
	}
	return json.Marshal(rules)
}

// Contract describes how role list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "roles",
		Alias:   "r",
		Columns: []string{"id", "code", "name", "description", "company_id", "permissions", "is_system", "is_active", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			"companyId": "company_id",
			"code":      "code",
			"isSystem":  "is_system",
			"isActive":  "is_active",
		},
		SortColumns: map[string]string{
			"code":      "code",
			"name":      "name",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
