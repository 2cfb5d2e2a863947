package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
)

const (
	companyT1 = "11111111-1111-1111-1111-111111111111"
	companyT2 = "22222222-2222-2222-2222-222222222222"
)

func memberOf(company string) *auth.Identity {
	return &auth.Identity{
		UserID:    1,
		CompanyID: &company,
		Rules:     []acl.Rule{{Action: acl.ActionRead, Subject: acl.SubjectCatalog}},
	}
}

func ownerOf(company string) *auth.Identity {
	return &auth.Identity{
		UserID:         2,
		OwnedCompanyID: &company,
		Rules:          []acl.Rule{{Action: acl.ActionRead, Subject: acl.SubjectCatalog}},
	}
}

func platformAdmin() *auth.Identity {
	return &auth.Identity{
		UserID: 3,
		Rules:  []acl.Rule{{Action: acl.ActionManage, Subject: acl.SubjectAll}},
	}
}

func TestInferredCompanyID(t *testing.T) {
	assert.Nil(t, InferredCompanyID(nil))
	assert.Nil(t, InferredCompanyID(&auth.Identity{}))

	member := memberOf(companyT1)
	require.NotNil(t, InferredCompanyID(member))
	assert.Equal(t, companyT1, *InferredCompanyID(member))

	owner := ownerOf(companyT2)
	require.NotNil(t, InferredCompanyID(owner))
	assert.Equal(t, companyT2, *InferredCompanyID(owner))

	// membership takes precedence over ownership
	both := memberOf(companyT1)
	both.OwnedCompanyID = strPtr(companyT2)
	assert.Equal(t, companyT1, *InferredCompanyID(both))
}

func TestApplyScope_InjectsInferredTenant(t *testing.T) {
	filters, err := ApplyScope(memberOf(companyT1), map[string]any{"itemTypeId": "x"})
	require.NoError(t, err)

	assert.Equal(t, companyT1, filters[FilterKey])
	assert.Equal(t, "x", filters["itemTypeId"])
}

func TestApplyScope_NilFiltersAllocates(t *testing.T) {
	filters, err := ApplyScope(ownerOf(companyT2), nil)
	require.NoError(t, err)
	assert.Equal(t, companyT2, filters[FilterKey])
}

func TestApplyScope_NoTenantContextMeansNoFilter(t *testing.T) {
	filters, err := ApplyScope(platformAdmin(), map[string]any{})
	require.NoError(t, err)

	_, present := filters[FilterKey]
	assert.False(t, present)
}

func TestApplyScope_AnonymousNoFilter(t *testing.T) {
	filters, err := ApplyScope(nil, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, filters)
}

func TestApplyScope_PlatformCallerExplicitOverrides(t *testing.T) {
	filters, err := ApplyScope(platformAdmin(), map[string]any{FilterKey: companyT2})
	require.NoError(t, err)
	assert.Equal(t, companyT2, filters[FilterKey])
}

func TestApplyScope_TenantCallerExplicitMismatchRejected(t *testing.T) {
	_, err := ApplyScope(memberOf(companyT1), map[string]any{FilterKey: companyT2})
	assert.ErrorIs(t, err, ErrCrossTenant)
}

func TestApplyScope_TenantCallerExplicitOwnCompanyAllowed(t *testing.T) {
	filters, err := ApplyScope(memberOf(companyT1), map[string]any{FilterKey: companyT1})
	require.NoError(t, err)
	assert.Equal(t, companyT1, filters[FilterKey])
}

func strPtr(s string) *string { return &s }
