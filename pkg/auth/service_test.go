package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/acl"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		mock.ExpectQuery("SELECT id, password_hash, is_active FROM users").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		svc := NewService(db)
		_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		hash, err := HashPassword("correct-password")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, password_hash, is_active FROM users").
			WithArgs("staff@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "is_active"}).
				AddRow(int64(7), hash, true))

		svc := NewService(db)
		_, err = svc.Login(context.Background(), "staff@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		hash, err := HashPassword("correct-password")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, password_hash, is_active FROM users").
			WithArgs("staff@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "is_active"}).
				AddRow(int64(7), hash, false))

		svc := NewService(db)
		_, err = svc.Login(context.Background(), "staff@example.com", "correct-password")
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestService_Login_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, password_hash, is_active FROM users").
		WithArgs("staff@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "is_active"}).
			AddRow(int64(7), hash, true))

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	companyID := "11111111-1111-1111-1111-111111111111"
	mock.ExpectQuery("SELECT uuid, full_name, email, company_id, owned_company_id, branch_id, is_active").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"uuid", "full_name", "email", "company_id", "owned_company_id", "branch_id", "is_active",
		}).AddRow("u-7", "Staff One", "staff@example.com", companyID, nil, nil, true))

	mock.ExpectQuery("SELECT r.code, r.permissions").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"code", "permissions"}).
			AddRow("branch_staff", []byte(`[{"action":"read","subject":"Catalog"}]`)))

	svc := NewService(db)
	result, err := svc.Login(context.Background(), "staff@example.com", "correct-password")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	require.NotNil(t, result.User)
	assert.Equal(t, []string{"branch_staff"}, result.User.RoleCodes)
	require.NotNil(t, result.User.CompanyID)
	assert.Equal(t, companyID, *result.User.CompanyID)
	assert.True(t, result.User.Ability().Can(acl.ActionRead, acl.SubjectCatalog))
	assert.False(t, result.User.Ability().Can(acl.ActionUpdate, acl.SubjectCatalog))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_IdentityFromToken(t *testing.T) {
	t.Run("malformed token", func(t *testing.T) {
		db, _ := setupMockDB(t)
		defer db.Close()

		svc := NewService(db)
		_, err := svc.IdentityFromToken(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		svc := NewService(db)
		token, _, err := svc.tokens.GenerateToken()
		require.NoError(t, err)

		mock.ExpectQuery("SELECT user_id FROM sessions").
			WillReturnError(sql.ErrNoRows)

		_, err = svc.IdentityFromToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("valid token with multiple roles", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		svc := NewService(db)
		token, _, err := svc.tokens.GenerateToken()
		require.NoError(t, err)

		mock.ExpectQuery("SELECT user_id FROM sessions").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(3)))

		mock.ExpectQuery("SELECT uuid, full_name, email, company_id, owned_company_id, branch_id, is_active").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{
				"uuid", "full_name", "email", "company_id", "owned_company_id", "branch_id", "is_active",
			}).AddRow("u-3", "Owner", "owner@example.com", nil, "22222222-2222-2222-2222-222222222222", nil, true))

		mock.ExpectQuery("SELECT r.code, r.permissions").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"code", "permissions"}).
				AddRow("owner", []byte(`[{"action":"manage","subject":"All"}]`)).
				AddRow("auditor", []byte(`[{"action":"read","subject":"Report"}]`)))

		identity, err := svc.IdentityFromToken(context.Background(), token)
		require.NoError(t, err)

		assert.True(t, identity.HasRole("owner"))
		assert.True(t, identity.HasRole("auditor"))
		assert.True(t, identity.Ability().IsPlatformWide())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_PurgeExpiredSessions(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 12))

	svc := NewService(db)
	n, err := svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}
