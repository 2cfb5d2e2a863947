package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/storage"
)

const (
	testCatalogID  = "aaaaaaaa-0000-0000-0000-000000000001"
	testCompanyID  = "aaaaaaaa-0000-0000-0000-000000000002"
	testItemTypeID = "aaaaaaaa-0000-0000-0000-000000000003"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func catalogRow(price float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "company_id", "item_type_id", "name", "price", "unit", "status", "created_at", "updated_at",
	}).AddRow(testCatalogID, testCompanyID, testItemTypeID, "Gold 24K", price, "gram", "active", time.Now(), time.Now())
}

func TestCreateSeedsPriceHistory(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO catalogs`).
		WithArgs(sqlmock.AnyArg(), testCompanyID, testItemTypeID, "Gold 24K", 1250000.0, "gram").
		WillReturnRows(catalogRow(1250000))
	mock.ExpectExec(`INSERT INTO catalog_price_history`).
		WithArgs(testCatalogID, 1250000.0, int64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	catalog, err := store.Create(context.Background(), &CreateCatalogRequest{
		CompanyID:  testCompanyID,
		ItemTypeID: testItemTypeID,
		Name:       "Gold 24K",
		Price:      1250000,
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, testCatalogID, catalog.ID)
	assert.Equal(t, "gram", catalog.Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePriceChangeWritesHistory(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM catalogs`).
		WithArgs(testCatalogID).
		WillReturnRows(catalogRow(1250000))
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE catalogs`).
		WithArgs(testCatalogID, "Gold 24K", 1300000.0, "gram", "active").
		WillReturnRows(catalogRow(1300000))
	mock.ExpectExec(`INSERT INTO catalog_price_history`).
		WithArgs(testCatalogID, 1300000.0, int64(7)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	price := 1300000.0
	catalog, err := store.Update(context.Background(), testCatalogID, &UpdateCatalogRequest{Price: &price}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1300000.0, catalog.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithoutPriceChangeSkipsHistory(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM catalogs`).
		WithArgs(testCatalogID).
		WillReturnRows(catalogRow(1250000))
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE catalogs`).
		WithArgs(testCatalogID, "Gold 22K", 1250000.0, "gram", "active").
		WillReturnRows(catalogRow(1250000))
	mock.ExpectCommit()

	name := "Gold 22K"
	_, err := store.Update(context.Background(), testCatalogID, &UpdateCatalogRequest{Name: &name}, 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPriceHistoryUnknownCatalog(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM catalogs`).
		WithArgs(testCatalogID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.PriceHistory(context.Background(), testCatalogID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPriceHistoryNewestFirst(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM catalogs`).
		WithArgs(testCatalogID).
		WillReturnRows(catalogRow(1300000))
	mock.ExpectQuery(`SELECT .+ FROM catalog_price_history`).
		WithArgs(testCatalogID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "catalog_id", "price", "changed_by", "changed_at"}).
			AddRow(2, testCatalogID, 1300000, 7, time.Now()).
			AddRow(1, testCatalogID, 1250000, nil, time.Now().Add(-time.Hour)))

	history, err := store.PriceHistory(context.Background(), testCatalogID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1300000.0, history[0].Price)
	require.NotNil(t, history[0].ChangedBy)
	assert.Equal(t, int64(7), *history[0].ChangedBy)
	assert.Nil(t, history[1].ChangedBy)
}
