package customers

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists customers in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new customer store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const customerColumns = `id, company_id, branch_id, national_id, name, phone, address, is_blacklisted, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var (
		c              Customer
		branchID       sql.NullString
		phone, address sql.NullString
	)
	err := row.Scan(&c.ID, &c.CompanyID, &branchID, &c.NationalID, &c.Name,
		&phone, &address, &c.IsBlacklisted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if branchID.Valid {
		c.BranchID = &branchID.String
	}
	c.Phone = phone.String
	c.Address = address.String
	return &c, nil
}

// Create inserts a customer.
func (s *Store) Create(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	query := `
		INSERT INTO customers (id, company_id, branch_id, national_id, name, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + customerColumns

	customer, err := scanCustomer(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.CompanyID, req.BranchID, req.NationalID,
		req.Name, req.Phone, req.Address))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return customer, nil
}

// Get returns a customer by id.
func (s *Store) Get(ctx context.Context, id string) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	customer, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return customer, nil
}

// Update modifies a customer. The national id is immutable once set.
func (s *Store) Update(ctx context.Context, id string, req *UpdateCustomerRequest) (*Customer, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	phone := current.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	address := current.Address
	if req.Address != nil {
		address = *req.Address
	}
	branchID := current.BranchID
	if req.BranchID != nil {
		branchID = req.BranchID
	}

	query := `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, branch_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns

	customer, err := scanCustomer(s.db.QueryRowContext(ctx, query, id, name, phone, address, branchID))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return customer, nil
}

// SetBlacklisted flips the blacklist flag.
func (s *Store) SetBlacklisted(ctx context.Context, id string, blacklisted bool) (*Customer, error) {
	query := `
		UPDATE customers
		SET is_blacklisted = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns

	customer, err := scanCustomer(s.db.QueryRowContext(ctx, query, id, blacklisted))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return customer, nil
}

// Delete removes a customer.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return postgres.TranslateError(sql.ErrNoRows)
	}
	return nil
}
