package companies

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists companies and branches in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new company store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const companyColumns = `id, name, code, address, phone, is_active, created_at, updated_at`
const branchColumns = `id, company_id, name, code, address, phone, is_active, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (*Company, error) {
	var (
		c              Company
		address, phone sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Code, &address, &phone,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Address = address.String
	c.Phone = phone.String
	return &c, nil
}

func scanBranch(row interface{ Scan(...any) error }) (*Branch, error) {
	var (
		b              Branch
		address, phone sql.NullString
	)
	err := row.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Code, &address, &phone,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Address = address.String
	b.Phone = phone.String
	return &b, nil
}

// CreateCompany inserts a company.
func (s *Store) CreateCompany(ctx context.Context, req *CreateCompanyRequest) (*Company, error) {
	query := `
		INSERT INTO companies (id, name, code, address, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + companyColumns

	company, err := scanCompany(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.Name, req.Code, req.Address, req.Phone))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return company, nil
}

// GetCompany returns a company by id.
func (s *Store) GetCompany(ctx context.Context, id string) (*Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	company, err := scanCompany(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return company, nil
}

// UpdateCompany modifies a company.
func (s *Store) UpdateCompany(ctx context.Context, id string, req *UpdateCompanyRequest) (*Company, error) {
	current, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	address := current.Address
	if req.Address != nil {
		address = *req.Address
	}
	phone := current.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `
		UPDATE companies
		SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns

	company, err := scanCompany(s.db.QueryRowContext(ctx, query, id, name, address, phone, isActive))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return company, nil
}

// DeactivateCompany flips a company inactive. The row is kept so that the
// tenant's historical records stay resolvable.
func (s *Store) DeactivateCompany(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE companies SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	return requireAffected(result)
}

// CreateBranch inserts a branch under a company.
func (s *Store) CreateBranch(ctx context.Context, companyID string, req *CreateBranchRequest) (*Branch, error) {
	query := `
		INSERT INTO branches (id, company_id, name, code, address, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + branchColumns

	branch, err := scanBranch(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), companyID, req.Name, req.Code, req.Address, req.Phone))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return branch, nil
}

// GetBranch returns a branch by id.
func (s *Store) GetBranch(ctx context.Context, id string) (*Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	branch, err := scanBranch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return branch, nil
}

// UpdateBranch modifies a branch.
func (s *Store) UpdateBranch(ctx context.Context, id string, req *UpdateBranchRequest) (*Branch, error) {
	current, err := s.GetBranch(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	address := current.Address
	if req.Address != nil {
		address = *req.Address
	}
	phone := current.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `
		UPDATE branches
		SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + branchColumns

	branch, err := scanBranch(s.db.QueryRowContext(ctx, query, id, name, address, phone, isActive))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return branch, nil
}

// DeleteBranch removes a branch.
func (s *Store) DeleteBranch(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return postgres.TranslateError(sql.ErrNoRows)
	}
	return nil
}
