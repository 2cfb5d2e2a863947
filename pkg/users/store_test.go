package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/storage"
)

func userRow(id int64, email string, companyID *string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "uuid", "email", "full_name", "company_id", "owned_company_id",
		"branch_id", "is_active", "created_at", "updated_at",
	}).AddRow(id, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", email, "Test User",
		companyID, nil, nil, true, now, now)
}

func TestStoreCreateHashesPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "new@example.com", "New User", sqlmock.AnyArg(), nil, nil).
		WillReturnRows(userRow(5, "new@example.com", nil))

	store := NewStore(db)
	user, err := store.Create(context.Background(), &CreateUserRequest{
		Email:    "new@example.com",
		FullName: "New User",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	store := NewStore(db)
	_, err = store.Create(context.Background(), &CreateUserRequest{
		Email: "dup@example.com", FullName: "Dup", Password: "pw",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestStoreGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db)
	_, err = store.Get(context.Background(), 404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreUpdatePartialFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	companyID := "11111111-2222-3333-4444-555555555555"
	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs(int64(5)).
		WillReturnRows(userRow(5, "user@example.com", &companyID))
	mock.ExpectQuery("UPDATE users").
		WithArgs(int64(5), "Renamed", &companyID, nil, true).
		WillReturnRows(userRow(5, "user@example.com", &companyID))

	store := NewStore(db)
	newName := "Renamed"
	user, err := store.Update(context.Background(), 5, &UpdateUserRequest{FullName: &newName})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDeactivateMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET is_active = FALSE").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewStore(db)
	err = store.Deactivate(context.Background(), 404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreResetPasswordRevokesSessions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(int64(5), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	store := NewStore(db)
	require.NoError(t, store.ResetPassword(context.Background(), 5, "new-password"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreResetPasswordMissingUserRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(int64(404), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := NewStore(db)
	err = store.ResetPassword(context.Background(), 404, "new-password")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
