package roles

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/storage"
	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists roles in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new role store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const roleColumns = `id, code, name, description, company_id, permissions, is_system, is_active, created_at, updated_at`

func scanRole(row interface{ Scan(...any) error }) (*Role, error) {
	var (
		role            Role
		description     sql.NullString
		permissionsJSON []byte
	)
	err := row.Scan(
		&role.ID, &role.Code, &role.Name, &description, &role.CompanyID,
		&permissionsJSON, &role.IsSystem, &role.IsActive,
		&role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	role.Description = description.String

	if len(permissionsJSON) > 0 {
		if err := json.Unmarshal(permissionsJSON, &role.Rules); err != nil {
			return nil, fmt.Errorf("failed to parse permissions for role %s: %w", role.Code, err)
		}
	}
	if role.Rules == nil {
		role.Rules = []acl.Rule{}
	}
	return &role, nil
}

// Create inserts a custom role.
func (s *Store) Create(ctx context.Context, req *CreateRoleRequest) (*Role, error) {
	permissions, err := marshalRules(req.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	query := `
		INSERT INTO roles (code, name, description, company_id, permissions, is_system, is_active)
		VALUES ($1, $2, $3, $4, $5, FALSE, TRUE)
		RETURNING ` + roleColumns

	role, err := scanRole(s.db.QueryRowContext(ctx, query,
		req.Code, req.Name, req.Description, req.CompanyID, permissions))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return role, nil
}

// Get returns a role by id.
func (s *Store) Get(ctx context.Context, id int64) (*Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	role, err := scanRole(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return role, nil
}

// Update modifies a custom role. System roles are immutable.
func (s *Store) Update(ctx context.Context, id int64, req *UpdateRoleRequest) (*Role, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsSystem {
		return nil, fmt.Errorf("%w: system roles are immutable", storage.ErrConflict)
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	rules := current.Rules
	if req.Rules != nil {
		rules = req.Rules
	}

	permissions, err := marshalRules(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	query := `
		UPDATE roles
		SET name = $2, description = $3, permissions = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1 AND is_system = FALSE
		RETURNING ` + roleColumns

	role, err := scanRole(s.db.QueryRowContext(ctx, query, id, name, description, permissions, isActive))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return role, nil
}

// Delete removes a custom role. System roles cannot be deleted.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM roles WHERE id = $1 AND is_system = FALSE`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		// Either the role does not exist or it is a system role
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: system roles are immutable", storage.ErrConflict)
	}
	return nil
}

// Assign grants a role to a user.
func (s *Store) Assign(ctx context.Context, userID, roleID, grantedBy int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id, granted_by)
		VALUES ($1, $2, $3)
	`, userID, roleID, grantedBy)
	return postgres.TranslateError(err)
}

// Revoke removes a role from a user. Revoking an unassigned role is not an
// error.
func (s *Store) Revoke(ctx context.Context, userID, roleID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return postgres.TranslateError(err)
}
