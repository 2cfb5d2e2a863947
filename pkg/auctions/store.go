package auctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/storage"
	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists auction batches in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new auction store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const batchColumns = `id, company_id, branch_id, name, notes, status,
	submitted_at, validated_by, validated_at,
	rejection_reason, completed_at, created_at, updated_at`

func scanBatch(row interface{ Scan(...any) error }) (*Batch, error) {
	var (
		b                                  Batch
		branchID, notes, rejectionReason   sql.NullString
		validatedBy                        sql.NullInt64
		submittedAt, validatedAt, complete sql.NullTime
	)
	err := row.Scan(&b.ID, &b.CompanyID, &branchID, &b.Name, &notes, &b.Status,
		&submittedAt, &validatedBy, &validatedAt,
		&rejectionReason, &complete, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if branchID.Valid {
		b.BranchID = &branchID.String
	}
	b.Notes = notes.String
	b.RejectionReason = rejectionReason.String
	if submittedAt.Valid {
		b.SubmittedAt = &submittedAt.Time
	}
	if validatedBy.Valid {
		b.ValidatedBy = &validatedBy.Int64
	}
	if validatedAt.Valid {
		b.ValidatedAt = &validatedAt.Time
	}
	if complete.Valid {
		b.CompletedAt = &complete.Time
	}
	return &b, nil
}

// Create drafts a batch.
func (s *Store) Create(ctx context.Context, req *CreateBatchRequest) (*Batch, error) {
	query := `
		INSERT INTO auction_batches (id, company_id, branch_id, name, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + batchColumns

	batch, err := scanBatch(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.CompanyID, req.BranchID, req.Name, req.Notes))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return batch, nil
}

// Get returns a batch by id.
func (s *Store) Get(ctx context.Context, id string) (*Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM auction_batches WHERE id = $1`
	batch, err := scanBatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return batch, nil
}

// Update edits a batch while it is still a draft.
func (s *Store) Update(ctx context.Context, id string, req *UpdateBatchRequest) (*Batch, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft batches can be edited", storage.ErrConflict)
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	notes := current.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	query := `
		UPDATE auction_batches
		SET name = $2, notes = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + batchColumns

	batch, err := scanBatch(s.db.QueryRowContext(ctx, query, id, name, notes, StatusDraft))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return batch, nil
}

// Submit moves a draft (or rejected) batch to pending validation.
// Resubmitting a rejected batch clears its previous verdict.
func (s *Store) Submit(ctx context.Context, id string) (*Batch, error) {
	query := `
		UPDATE auction_batches
		SET status = $2, submitted_at = NOW(),
			validated_by = NULL, validated_at = NULL, rejection_reason = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
		RETURNING ` + batchColumns

	batch, err := scanBatch(s.db.QueryRowContext(ctx, query,
		id, StatusPendingValidation, StatusDraft, StatusRejected))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusDraft)
	}
	return batch, nil
}

// Approve validates a pending batch.
func (s *Store) Approve(ctx context.Context, id string, validatedBy int64) (*Batch, error) {
	query := `
		UPDATE auction_batches
		SET status = $3, validated_by = $2, validated_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + batchColumns

	batch, err := scanBatch(s.db.QueryRowContext(ctx, query,
		id, validatedBy, StatusApproved, StatusPendingValidation))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusPendingValidation)
	}
	return batch, nil
}

// Reject turns a pending batch down with the validator's reason.
func (s *Store) Reject(ctx context.Context, id string, validatedBy int64, reason string) (*Batch, error) {
	query := `
		UPDATE auction_batches
		SET status = $4, validated_by = $2, validated_at = NOW(), rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING ` + batchColumns

	batch, err := scanBatch(s.db.QueryRowContext(ctx, query,
		id, validatedBy, reason, StatusRejected, StatusPendingValidation))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusPendingValidation)
	}
	return batch, nil
}

// Complete closes out an approved batch after the sale has run.
func (s *Store) Complete(ctx context.Context, id string) (*Batch, error) {
	query := `
		UPDATE auction_batches
		SET status = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING ` + batchColumns

	batch, err := scanBatch(s.db.QueryRowContext(ctx, query, id, StatusCompleted, StatusApproved))
	if err != nil {
		return nil, s.transitionError(ctx, id, err, StatusApproved)
	}
	return batch, nil
}

// Delete removes a draft batch.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM auction_batches WHERE id = $1 AND status = $2`, id, StatusDraft)
	if err != nil {
		return postgres.TranslateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.transitionError(ctx, id, sql.ErrNoRows, StatusDraft)
	}
	return nil
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
