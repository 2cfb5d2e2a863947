package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
)

func identityWith(rules ...acl.Rule) *auth.Identity {
	return &auth.Identity{UserID: 1, UUID: "u-1", Rules: rules}
}

func TestAuthorize_Public(t *testing.T) {
	spec := RouteSpec{Name: "auth.login", Public: true}

	// public operations allow a caller with no identity at all
	assert.NoError(t, Authorize(nil, spec))

	// and identified callers too, regardless of ability
	assert.NoError(t, Authorize(identityWith(), spec))
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	spec := RouteSpec{Name: "catalogs.list", Require: []acl.Requirement{
		{Action: acl.ActionRead, Subject: acl.SubjectCatalog},
	}}

	err := Authorize(nil, spec)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.False(t, IsForbidden(err))
}

func TestAuthorize_EmptyRequirementAllowsAnyAuthenticated(t *testing.T) {
	spec := RouteSpec{Name: "profile.get"}

	// caller with zero permissions still passes
	assert.NoError(t, Authorize(identityWith(), spec))

	// but anonymous does not
	assert.ErrorIs(t, Authorize(nil, spec), ErrUnauthenticated)
}

func TestAuthorize_SingleRequirement(t *testing.T) {
	spec := RouteSpec{Name: "catalogs.list", Require: []acl.Requirement{
		{Action: acl.ActionRead, Subject: acl.SubjectCatalog},
	}}

	reader := identityWith(acl.Rule{Action: acl.ActionRead, Subject: acl.SubjectCatalog})
	assert.NoError(t, Authorize(reader, spec))

	outsider := identityWith(acl.Rule{Action: acl.ActionRead, Subject: acl.SubjectCustomer})
	err := Authorize(outsider, spec)
	assert.True(t, IsForbidden(err))
}

func TestAuthorize_ConjunctiveFailsFastInOrder(t *testing.T) {
	spec := RouteSpec{Name: "catalogs.update", Require: []acl.Requirement{
		{Action: acl.ActionRead, Subject: acl.SubjectCatalog},
		{Action: acl.ActionUpdate, Subject: acl.SubjectCatalog},
	}}

	readOnly := identityWith(acl.Rule{Action: acl.ActionRead, Subject: acl.SubjectCatalog})
	err := Authorize(readOnly, spec)
	require.True(t, IsForbidden(err))

	// the denial names the first unmet pair, in declaration order
	assert.Contains(t, err.Error(), "update")
	assert.Contains(t, err.Error(), "Catalog")

	both := identityWith(
		acl.Rule{Action: acl.ActionRead, Subject: acl.SubjectCatalog},
		acl.Rule{Action: acl.ActionUpdate, Subject: acl.SubjectCatalog},
	)
	assert.NoError(t, Authorize(both, spec))
}

func TestAuthorize_WildcardSatisfiesEverything(t *testing.T) {
	admin := identityWith(acl.Rule{Action: acl.ActionManage, Subject: acl.SubjectAll})

	for _, subject := range acl.AllSubjects() {
		spec := RouteSpec{Name: "any", Require: []acl.Requirement{
			{Action: acl.ActionDelete, Subject: subject},
		}}
		assert.NoError(t, Authorize(admin, spec))
	}
}

func TestForbiddenError_Message(t *testing.T) {
	err := &ForbiddenError{Requirement: acl.Requirement{
		Action: acl.ActionUpdate, Subject: acl.SubjectCatalog,
	}}
	assert.Equal(t, "you are not allowed to update Catalog", err.Error())
}
