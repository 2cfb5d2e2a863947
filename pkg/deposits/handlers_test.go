package deposits

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

func TestCreateDepositInfersCompanyAndBranch(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`INSERT INTO cash_deposits`).
		WithArgs(sqlmock.AnyArg(), testCompanyID, testBranchID, 2500000.0, "", int64(5)).
		WillReturnRows(depositRow(StatusPending))

	companyID := testCompanyID
	branchID := testBranchID
	staff := &auth.Identity{
		UserID:    5,
		CompanyID: &companyID,
		BranchID:  &branchID,
		Rules:     []acl.Rule{{Action: acl.ActionCreate, Subject: acl.SubjectCashDeposit}},
	}
	rec := doRequest(router, staff, http.MethodPost, "/cash-deposits", `{"amount":2500000}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveDepositForbiddenWithoutUpdate(t *testing.T) {
	router, _ := newTestRouter(t)

	companyID := testCompanyID
	staff := &auth.Identity{
		UserID:    5,
		CompanyID: &companyID,
		Rules:     []acl.Rule{{Action: acl.ActionCreate, Subject: acl.SubjectCashDeposit}},
	}
	rec := doRequest(router, staff, http.MethodPost, "/cash-deposits/"+testDepositID+"/approve", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "update CashDeposit")
}

func TestListDepositsFilterByStatus(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM cash_deposits cd`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM cash_deposits cd`).
		WillReturnRows(depositRow(StatusApproved))

	platform := &auth.Identity{
		UserID: 1,
		Rules:  []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectAll}},
	}
	rec := doRequest(router, platform, http.MethodGet, "/cash-deposits?status=approved", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"approved"`)
}
