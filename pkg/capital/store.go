package capital

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/storage"
	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists capital top-ups in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new capital store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const topupColumns = `id, company_id, amount, notes, status,
	requested_by, approved_by, approved_at,
	rejected_at, rejection_reason,
	disbursed_by, disbursed_at, created_at, updated_at`

func scanTopup(row interface{ Scan(...any) error }) (*Topup, error) {
	var (
		t                                   Topup
		notes, rejectionReason              sql.NullString
		requestedBy, approvedBy, disbursed  sql.NullInt64
		approvedAt, rejectedAt, disbursedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.CompanyID, &t.Amount, &notes, &t.Status,
		&requestedBy, &approvedBy, &approvedAt,
		&rejectedAt, &rejectionReason,
		&disbursed, &disbursedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Notes = notes.String
	t.RejectionReason = rejectionReason.String
	if requestedBy.Valid {
		t.RequestedBy = &requestedBy.Int64
	}
	if approvedBy.Valid {
		t.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		t.RejectedAt = &rejectedAt.Time
	}
	if disbursed.Valid {
		t.DisbursedBy = &disbursed.Int64
	}
	if disbursedAt.Valid {
		t.DisbursedAt = &disbursedAt.Time
	}
	return &t, nil
}

// Create inserts a pending top-up request.
func (s *Store) Create(ctx context.Context, req *CreateTopupRequest, requestedBy int64) (*Topup, error) {
	query := `
		INSERT INTO capital_topups (id, company_id, amount, notes, requested_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + topupColumns

	topup, err := scanTopup(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.CompanyID, req.Amount, req.Notes, requestedBy))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return topup, nil
}

// Get returns a top-up by id.
func (s *Store) Get(ctx context.Context, id string) (*Topup, error) {
	query := `SELECT ` + topupColumns + ` FROM capital_topups WHERE id = $1`
	topup, err := scanTopup(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return topup, nil
}

// Approve moves a pending top-up to approved.
func (s *Store) Approve(ctx context.Context, id string, approvedBy int64) (*Topup, error) {
	query := `
		UPDATE capital_topups
		SET status = $3, approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + topupColumns

	topup, err := scanTopup(s.db.QueryRowContext(ctx, query, id, approvedBy, StatusApproved, StatusPending))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusPending)
	}
	return topup, nil
}

// Reject moves a pending top-up to rejected with the reviewer's reason.
func (s *Store) Reject(ctx context.Context, id string, rejectedBy int64, reason string) (*Topup, error) {
	query := `
		UPDATE capital_topups
		SET status = $4, approved_by = $2, rejected_at = NOW(), rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING ` + topupColumns

	topup, err := scanTopup(s.db.QueryRowContext(ctx, query, id, rejectedBy, reason, StatusRejected, StatusPending))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusPending)
	}
	return topup, nil
}

// Disburse closes out an approved top-up.
func (s *Store) Disburse(ctx context.Context, id string, disbursedBy int64) (*Topup, error) {
	query := `
		UPDATE capital_topups
		SET status = $3, disbursed_by = $2, disbursed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + topupColumns

	topup, err := scanTopup(s.db.QueryRowContext(ctx, query, id, disbursedBy, StatusDisbursed, StatusApproved))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusApproved)
	}
	return topup, nil
}

// transitionError tells a missing row apart from a row in the wrong
// status: the guarded UPDATE returns no row either way.
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
