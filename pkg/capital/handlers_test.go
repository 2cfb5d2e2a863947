package capital

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func requester(companyID string) *auth.Identity {
	id := companyID
	return &auth.Identity{
		UserID:    3,
		CompanyID: &id,
		Rules: []acl.Rule{
			{Action: acl.ActionRead, Subject: acl.SubjectCapitalTopup},
			{Action: acl.ActionCreate, Subject: acl.SubjectCapitalTopup},
		},
	}
}

func reviewer() *auth.Identity {
	return &auth.Identity{
		UserID: 1,
		Rules:  []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectAll}},
	}
}

func TestCreateTopupRejectsNonPositiveAmount(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, requester(testCompanyID), http.MethodPost, "/capital-topups",
		`{"amount":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount must be positive")
}

func TestRequesterCannotApprove(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, requester(testCompanyID), http.MethodPost,
		"/capital-topups/"+testTopupID+"/approve", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "update CapitalTopup")
}

func TestApproveEndpoint(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`UPDATE capital_topups`).
		WithArgs(testTopupID, int64(1), StatusApproved, StatusPending).
		WillReturnRows(topupRow(StatusApproved))

	rec := doRequest(router, reviewer(), http.MethodPost,
		"/capital-topups/"+testTopupID+"/approve", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"approved"`)
}

func TestRejectRequiresReason(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, reviewer(), http.MethodPost,
		"/capital-topups/"+testTopupID+"/reject", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "reason is required")
}

func TestDisburseWrongStatusIs409(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`UPDATE capital_topups`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT .+ FROM capital_topups`).
		WithArgs(testTopupID).
		WillReturnRows(topupRow(StatusPending))

	rec := doRequest(router, reviewer(), http.MethodPost,
		"/capital-topups/"+testTopupID+"/disburse", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListTopupsScopedToTenant(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM capital_topups ct WHERE ct\.company_id = \$1`).
		WithArgs(testCompanyID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM capital_topups ct WHERE ct\.company_id = \$1`).
		WithArgs(testCompanyID).
		WillReturnRows(topupRow(StatusPending))

	rec := doRequest(router, requester(testCompanyID), http.MethodGet, "/capital-topups", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
