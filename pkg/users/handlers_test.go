package users

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
)

func newTestRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router := mux.NewRouter()
	NewHandler(db).RegisterRoutes(router)
	return router, mock
}

func doRequest(router *mux.Router, identity *auth.Identity, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMeRequiresOnlyAuthentication(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs(int64(9)).
		WillReturnRows(userRow(9, "me@example.com", nil))

	// No permission rules at all: /me has an empty requirement set
	identity := &auth.Identity{UserID: 9}
	rec := doRequest(router, identity, http.MethodGet, "/me", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "me@example.com")
}

func TestMeAnonymousRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, nil, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateValidatesPayload(t *testing.T) {
	router, _ := newTestRouter(t)

	admin := &auth.Identity{
		UserID: 1,
		Rules:  []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectUser}},
	}
	rec := doRequest(router, admin, http.MethodPost, "/users", `{"email":"x@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "fullName is required")
}

func TestListWithCompanyRelation(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users u`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+, co\.name FROM users u LEFT JOIN companies co ON co\.id = u\.company_id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "uuid", "email", "full_name", "company_id", "owned_company_id",
			"branch_id", "is_active", "created_at", "updated_at", "name",
		}).AddRow(1, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", "a@example.com", "A",
			nil, nil, nil, true, time.Now(), time.Now(), "Acme Pawn"))

	platform := &auth.Identity{
		UserID: 1,
		Rules:  []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectAll}},
	}
	rec := doRequest(router, platform, http.MethodGet, "/users?expand=company", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Pawn")
}
