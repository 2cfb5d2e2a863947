package deposits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/storage"
	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists cash deposits in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new deposit store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const depositColumns = `id, company_id, branch_id, amount, notes, status,
	requested_by, approved_by, approved_at,
	rejected_at, rejection_reason,
	disbursed_by, disbursed_at, created_at, updated_at`

func scanDeposit(row interface{ Scan(...any) error }) (*Deposit, error) {
	var (
		d                                   Deposit
		branchID                            sql.NullString
		notes, rejectionReason              sql.NullString
		requestedBy, approvedBy, disbursed  sql.NullInt64
		approvedAt, rejectedAt, disbursedAt sql.NullTime
	)
	err := row.Scan(&d.ID, &d.CompanyID, &branchID, &d.Amount, &notes, &d.Status,
		&requestedBy, &approvedBy, &approvedAt,
		&rejectedAt, &rejectionReason,
		&disbursed, &disbursedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if branchID.Valid {
		d.BranchID = &branchID.String
	}
	d.Notes = notes.String
	d.RejectionReason = rejectionReason.String
	if requestedBy.Valid {
		d.RequestedBy = &requestedBy.Int64
	}
	if approvedBy.Valid {
		d.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		d.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		d.RejectedAt = &rejectedAt.Time
	}
	if disbursed.Valid {
		d.DisbursedBy = &disbursed.Int64
	}
	if disbursedAt.Valid {
		d.DisbursedAt = &disbursedAt.Time
	}
	return &d, nil
}

// Create inserts a pending deposit request.
func (s *Store) Create(ctx context.Context, req *CreateDepositRequest, requestedBy int64) (*Deposit, error) {
	query := `
		INSERT INTO cash_deposits (id, company_id, branch_id, amount, notes, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + depositColumns

	deposit, err := scanDeposit(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.CompanyID, req.BranchID, req.Amount, req.Notes, requestedBy))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return deposit, nil
}

// Get returns a deposit by id.
func (s *Store) Get(ctx context.Context, id string) (*Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM cash_deposits WHERE id = $1`
	deposit, err := scanDeposit(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return deposit, nil
}

// Approve moves a pending deposit to approved.
func (s *Store) Approve(ctx context.Context, id string, approvedBy int64) (*Deposit, error) {
	query := `
		UPDATE cash_deposits
		SET status = $3, approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + depositColumns

	deposit, err := scanDeposit(s.db.QueryRowContext(ctx, query, id, approvedBy, StatusApproved, StatusPending))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusPending)
	}
	return deposit, nil
}

// Reject moves a pending deposit to rejected with the reviewer's reason.
func (s *Store) Reject(ctx context.Context, id string, rejectedBy int64, reason string) (*Deposit, error) {
	query := `
		UPDATE cash_deposits
		SET status = $4, approved_by = $2, rejected_at = NOW(), rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING ` + depositColumns

	deposit, err := scanDeposit(s.db.QueryRowContext(ctx, query, id, rejectedBy, reason, StatusRejected, StatusPending))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusPending)
	}
	return deposit, nil
}

// Disburse closes out an approved deposit.
func (s *Store) Disburse(ctx context.Context, id string, disbursedBy int64) (*Deposit, error) {
	query := `
		UPDATE cash_deposits
		SET status = $3, disbursed_by = $2, disbursed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + depositColumns

	deposit, err := scanDeposit(s.db.QueryRowContext(ctx, query, id, disbursedBy, StatusDisbursed, StatusApproved))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusApproved)
	}
	return deposit, nil
}

func (s *Store) transitionError(ctx context.Context, id string, err error, want string) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return postgres.TranslateError(err)
	}
	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return getErr
	}
	return fmt.Errorf("%w: status is %s, want %s", storage.ErrConflict, current.Status, want)
}
