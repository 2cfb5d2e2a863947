package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists users in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new user store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, uuid, email, full_name, company_id, owned_company_id, branch_id, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.UUID, &user.Email, &user.FullName,
		&user.CompanyID, &user.OwnedCompanyID, &user.BranchID,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (uuid, email, full_name, password_hash, company_id, branch_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.Email, req.FullName, passwordHash, req.CompanyID, req.BranchID))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return user, nil
}

// Get returns a user by id.
func (s *Store) Get(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return user, nil
}

// Update modifies a user.
func (s *Store) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fullName := current.FullName
	if req.FullName != nil {
		fullName = *req.FullName
	}
	companyID := current.CompanyID
	if req.CompanyID != nil {
		companyID = req.CompanyID
	}
	branchID := current.BranchID
	if req.BranchID != nil {
		branchID = req.BranchID
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `
		UPDATE users
		SET full_name = $2, company_id = $3, branch_id = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id, fullName, companyID, branchID, isActive))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return user, nil
}

// Deactivate disables an account. Existing sessions stop resolving on the
// next request because identity loading checks is_active.
func (s *Store) Deactivate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	return requireAffected(res)
}

// ResetPassword replaces the stored password hash and revokes every
// session of the user.
func (s *Store) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		tx.Rollback()
		return postgres.TranslateError(err)
	}
	if err := requireAffected(res); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
		tx.Rollback()
		return postgres.TranslateError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit password reset: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return postgres.TranslateError(sql.ErrNoRows)
	}
	return nil
}
