package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gadaihub/backoffice/pkg/acl"
)

// SeedRole describes a built-in role created at bootstrap.
type SeedRole struct {
	Code        string
	Name        string
	Description string
	Rules       []acl.Rule
}

// BuiltInRoles returns the system roles seeded into every deployment.
// Company-owned custom roles are created through the roles API instead.
func BuiltInRoles() []SeedRole {
	return []SeedRole{
		{
			Code:        "owner",
			Name:        "Owner",
			Description: "Full access to every subject",
			Rules:       []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectAll}},
		},
		{
			Code:        "company_admin",
			Name:        "Company Admin",
			Description: "Manages company staff, catalog and approvals",
			Rules: []acl.Rule{
				{Action: acl.ActionManage, Subject: acl.SubjectUser},
				{Action: acl.ActionManage, Subject: acl.SubjectRole},
				{Action: acl.ActionManage, Subject: acl.SubjectBranch},
				{Action: acl.ActionManage, Subject: acl.SubjectItemType},
				{Action: acl.ActionManage, Subject: acl.SubjectCatalog},
				{Action: acl.ActionManage, Subject: acl.SubjectCustomer},
				{Action: acl.ActionManage, Subject: acl.SubjectCapitalTopup},
				{Action: acl.ActionManage, Subject: acl.SubjectCashDeposit},
				{Action: acl.ActionManage, Subject: acl.SubjectAuctionBatch},
				{Action: acl.ActionRead, Subject: acl.SubjectReport},
			},
		},
		{
			Code:        "branch_staff",
			Name:        "Branch Staff",
			Description: "Day-to-day branch operations",
			Rules: []acl.Rule{
				{Action: acl.ActionRead, Subject: acl.SubjectCatalog},
				{Action: acl.ActionManage, Subject: acl.SubjectCustomer},
				{Action: acl.ActionCreate, Subject: acl.SubjectPawnTicket},
				{Action: acl.ActionRead, Subject: acl.SubjectPawnTicket},
				{Action: acl.ActionCreate, Subject: acl.SubjectCashDeposit},
				{Action: acl.ActionRead, Subject: acl.SubjectCashDeposit},
				{Action: acl.ActionCreate, Subject: acl.SubjectAuctionBatch},
				{Action: acl.ActionRead, Subject: acl.SubjectAuctionBatch},
			},
		},
		{
			Code:        "auditor",
			Name:        "Auditor",
			Description: "Read-only access for audits and reporting",
			Rules: []acl.Rule{
				{Action: acl.ActionRead, Subject: acl.SubjectUser},
				{Action: acl.ActionRead, Subject: acl.SubjectCatalog},
				{Action: acl.ActionRead, Subject: acl.SubjectCustomer},
				{Action: acl.ActionRead, Subject: acl.SubjectPawnTicket},
				{Action: acl.ActionRead, Subject: acl.SubjectCapitalTopup},
				{Action: acl.ActionRead, Subject: acl.SubjectCashDeposit},
				{Action: acl.ActionRead, Subject: acl.SubjectAuctionBatch},
				{Action: acl.ActionView, Subject: acl.SubjectReport},
			},
		},
	}
}

// SeedBuiltInRoles inserts the built-in roles if they do not exist yet.
func SeedBuiltInRoles(ctx context.Context, db *sql.DB) error {
	for _, role := range BuiltInRoles() {
		permissions, err := json.Marshal(role.Rules)
		if err != nil {
			return fmt.Errorf("failed to marshal permissions for role %s: %w", role.Code, err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO roles (code, name, description, permissions, is_system, is_active)
			VALUES ($1, $2, $3, $4, TRUE, TRUE)
			ON CONFLICT (code) WHERE company_id IS NULL DO NOTHING
		`, role.Code, role.Name, role.Description, permissions)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Code, err)
		}
	}

	return nil
}
