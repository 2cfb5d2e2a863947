package companies

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

func platformIdentity() *auth.Identity {
	return &auth.Identity{
		UserID: 1,
		Rules:  []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectAll}},
	}
}

func TestCreateCompanyRequiresPermission(t *testing.T) {
	router, _ := newTestRouter(t)

	scoped := &auth.Identity{
		UserID: 2,
		Rules:  []acl.Rule{{Action: acl.ActionRead, Subject: acl.SubjectCompany}},
	}
	rec := doRequest(router, scoped, http.MethodPost, "/companies", `{"name":"Acme","code":"acme"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "create Company")
}

func TestCreateCompanyValidatesPayload(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, platformIdentity(), http.MethodPost, "/companies", `{"name":"Acme"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "code is required")
}

func TestCreateCompany201(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`INSERT INTO companies`).
		WillReturnRows(companyRow(testCompanyID, "Acme Pawn"))

	rec := doRequest(router, platformIdentity(), http.MethodPost, "/companies",
		`{"name":"Acme Pawn","code":"acme","address":"1 Main St","phone":"+62100"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), testCompanyID)
}

func TestListCompaniesTenantScoped(t *testing.T) {
	router, mock := newTestRouter(t)

	// A tenant-scoped reader only ever sees their own company row
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM companies c`).
		WithArgs(testCompanyID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM companies c WHERE c\.id = \$1`).
		WithArgs(testCompanyID).
		WillReturnRows(companyRow(testCompanyID, "Acme Pawn"))

	companyID := testCompanyID
	scoped := &auth.Identity{
		UserID:    3,
		CompanyID: &companyID,
		Rules:     []acl.Rule{{Action: acl.ActionRead, Subject: acl.SubjectCompany}},
	}
	rec := doRequest(router, scoped, http.MethodGet, "/companies", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Pawn")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCompanyInvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, platformIdentity(), http.MethodGet, "/companies/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBranchesWithCompanyRelation(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM branches b`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+, co\.name FROM branches b LEFT JOIN companies co ON co\.id = b\.company_id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "name", "code", "address", "phone",
			"is_active", "created_at", "updated_at", "name",
		}).AddRow(testBranchID, testCompanyID, "HQ", "hq", nil, nil,
			true, time.Now(), time.Now(), "Acme Pawn"))

	rec := doRequest(router, platformIdentity(), http.MethodGet, "/branches?expand=company", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Pawn")
}

func TestCreateBranchUnderCompany(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`INSERT INTO branches`).
		WithArgs(sqlmock.AnyArg(), testCompanyID, "HQ", "hq", "", "").
		WillReturnRows(branchRow(testBranchID, testCompanyID, "HQ"))

	rec := doRequest(router, platformIdentity(), http.MethodPost,
		"/companies/"+testCompanyID+"/branches", `{"name":"HQ","code":"hq"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), testBranchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBranchAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, nil, http.MethodDelete, "/branches/"+testBranchID, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
