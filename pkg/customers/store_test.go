package customers

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/storage"
)

const (
	testCustomerID = "bbbbbbbb-0000-0000-0000-000000000001"
	testCompanyID  = "bbbbbbbb-0000-0000-0000-000000000002"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func customerRow(blacklisted bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "company_id", "branch_id", "national_id", "name", "phone",
		"address", "is_blacklisted", "created_at", "updated_at",
	}).AddRow(testCustomerID, testCompanyID, nil, "3174051234567890", "Budi Santoso",
		"+62811", nil, blacklisted, time.Now(), time.Now())
}

func TestCreateCustomer(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(sqlmock.AnyArg(), testCompanyID, nil, "3174051234567890",
			"Budi Santoso", "+62811", "").
		WillReturnRows(customerRow(false))

	customer, err := store.Create(context.Background(), &CreateCustomerRequest{
		CompanyID:  testCompanyID,
		NationalID: "3174051234567890",
		Name:       "Budi Santoso",
		Phone:      "+62811",
	})
	require.NoError(t, err)
	assert.Equal(t, testCustomerID, customer.ID)
	assert.False(t, customer.IsBlacklisted)
	assert.Nil(t, customer.BranchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomerDuplicateNationalID(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.Create(context.Background(), &CreateCustomerRequest{
		CompanyID:  testCompanyID,
		NationalID: "3174051234567890",
		Name:       "Budi Santoso",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestSetBlacklisted(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`UPDATE customers`).
		WithArgs(testCustomerID, true).
		WillReturnRows(customerRow(true))

	customer, err := store.SetBlacklisted(context.Background(), testCustomerID, true)
	require.NoError(t, err)
	assert.True(t, customer.IsBlacklisted)
}

func TestDeleteCustomerMissing(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`DELETE FROM customers`).
		WithArgs(testCustomerID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), testCustomerID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
