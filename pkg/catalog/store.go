package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/gadaihub/backoffice/pkg/storage/postgres"
)

// Store persists item types, catalogs and price history in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new catalog store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const itemTypeColumns = `id, name, description, created_at, updated_at`
const catalogColumns = `id, company_id, item_type_id, name, price, unit, status, created_at, updated_at`

func scanItemType(row interface{ Scan(...any) error }) (*ItemType, error) {
	var (
		it          ItemType
		description sql.NullString
	)
	err := row.Scan(&it.ID, &it.Name, &description, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Description = description.String
	return &it, nil
}

func scanCatalog(row interface{ Scan(...any) error }) (*Catalog, error) {
	var c Catalog
	err := row.Scan(&c.ID, &c.CompanyID, &c.ItemTypeID, &c.Name,
		&c.Price, &c.Unit, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateItemType inserts a platform-wide item type.
func (s *Store) CreateItemType(ctx context.Context, req *CreateItemTypeRequest) (*ItemType, error) {
	query := `
		INSERT INTO item_types (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING ` + itemTypeColumns

	it, err := scanItemType(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.Name, req.Description))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return it, nil
}

// GetItemType returns an item type by id.
func (s *Store) GetItemType(ctx context.Context, id string) (*ItemType, error) {
	query := `SELECT ` + itemTypeColumns + ` FROM item_types WHERE id = $1`
	it, err := scanItemType(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return it, nil
}

// Create inserts a catalog and seeds its price history with the
// opening price.
func (s *Store) Create(ctx context.Context, req *CreateCatalogRequest, createdBy int64) (*Catalog, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO catalogs (id, company_id, item_type_id, name, price, unit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + catalogColumns

	unit := req.Unit
	if unit == "" {
		unit = "gram"
	}

	catalog, err := scanCatalog(tx.QueryRowContext(ctx, query,
		uuid.NewString(), req.CompanyID, req.ItemTypeID, req.Name, req.Price, unit))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO catalog_price_history (catalog_id, price, changed_by) VALUES ($1, $2, $3)`,
		catalog.ID, req.Price, createdBy)
	if err != nil {
		return nil, postgres.TranslateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Get returns a catalog by id.
func (s *Store) Get(ctx context.Context, id string) (*Catalog, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalogs WHERE id = $1`
	catalog, err := scanCatalog(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return catalog, nil
}

// Update modifies a catalog. When the price changes a history row is
// written in the same transaction.
func (s *Store) Update(ctx context.Context, id string, req *UpdateCatalogRequest, changedBy int64) (*Catalog, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	price := current.Price
	if req.Price != nil {
		price = *req.Price
	}
	unit := current.Unit
	if req.Unit != nil {
		unit = *req.Unit
	}
	status := current.Status
	if req.Status != nil {
		status = *req.Status
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE catalogs
		SET name = $2, price = $3, unit = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + catalogColumns

	catalog, err := scanCatalog(tx.QueryRowContext(ctx, query, id, name, price, unit, status))
	if err != nil {
		return nil, postgres.TranslateError(err)
	}

	if req.Price != nil && *req.Price != current.Price {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO catalog_price_history (catalog_id, price, changed_by) VALUES ($1, $2, $3)`,
			id, *req.Price, changedBy)
		if err != nil {
			return nil, postgres.TranslateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Delete removes a catalog. Its price history goes with it.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM catalogs WHERE id = $1`, id)
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

// PriceHistory returns a catalog's price changes, newest first.
func (s *Store) PriceHistory(ctx context.Context, catalogID string) ([]*PriceChange, error) {
	// Existence check so an unknown catalog reads as 404 rather than
	// an empty history
	if _, err := s.Get(ctx, catalogID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, catalog_id, price, changed_by, changed_at
		FROM catalog_price_history
		WHERE catalog_id = $1
		ORDER BY changed_at DESC`, catalogID)
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	defer rows.Close()

	history := make([]*PriceChange, 0)
	for rows.Next() {
		var (
			entry     PriceChange
			changedBy sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &entry.CatalogID, &entry.Price, &changedBy, &entry.ChangedAt); err != nil {
			return nil, err
		}
		if changedBy.Valid {
			entry.ChangedBy = &changedBy.Int64
		}
		history = append(history, &entry)
	}
	return history, rows.Err()
}
