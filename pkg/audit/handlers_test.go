package audit

import (
	"net/http"
	"net/http/httptest"
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

func doRequest(router *mux.Router, identity *auth.Identity, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func reportReader(companyID *string) *auth.Identity {
	return &auth.Identity{
		UserID:    9,
		CompanyID: companyID,
		Rules: []acl.Rule{
			{Action: acl.ActionRead, Subject: acl.SubjectReport},
		},
	}
}

func eventRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "event", "actor_id", "actor_email", "subject",
		"resource_id", "company_id", "request_id", "occurred_at",
	}).AddRow(1, "capitalTopups.approve", 42, "reviewer@example.com",
		"CapitalTopup", "topup-1", testCompanyID, "req-123", time.Now())
}

func TestListEventsScopedToTenant(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_events ae WHERE ae\.company_id = \$1`).
		WithArgs(testCompanyID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM audit_events ae WHERE ae\.company_id = \$1`).
		WithArgs(testCompanyID).
		WillReturnRows(eventRow())

	companyID := testCompanyID
	rec := doRequest(router, reportReader(&companyID), "/audit-events")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "capitalTopups.approve")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsRequiresReportRead(t *testing.T) {
	router, _ := newTestRouter(t)

	identity := &auth.Identity{
		UserID: 5,
		Rules: []acl.Rule{
			{Action: acl.ActionManage, Subject: acl.SubjectCustomer},
		},
	}
	rec := doRequest(router, identity, "/audit-events")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "read Report")
}

func TestListEventsFiltersByEvent(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_events ae WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM audit_events ae WHERE`).
		WillReturnRows(eventRow())

	rec := doRequest(router, reportReader(nil), "/audit-events?event=capitalTopups.approve")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsAnonymousRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, nil, "/audit-events")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
