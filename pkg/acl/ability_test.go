package acl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAbility_WildcardExpansion(t *testing.T) {
	ability := NewAbility([]Rule{
		{Action: ActionManage, Subject: SubjectAll},
	})

	// every declared action and subject must be granted
	for _, action := range AllActions() {
		for _, subject := range AllSubjects() {
			assert.True(t, ability.Can(action, subject),
				"expected manage/All to grant %s on %s", action, subject)
		}
	}

	// the original wildcard rule must match directly too
	assert.True(t, ability.Can(ActionManage, SubjectAll))
	assert.True(t, ability.IsPlatformWide())

	// one expanded rule per subject plus the retained original
	require.Len(t, ability.Rules(), len(AllSubjects())+1)
}

func TestNewAbility_ExplicitRules(t *testing.T) {
	ability := NewAbility([]Rule{
		{Action: ActionRead, Subject: SubjectCatalog},
	})

	assert.True(t, ability.Can(ActionRead, SubjectCatalog))
	assert.False(t, ability.Can(ActionCreate, SubjectCatalog))
	assert.False(t, ability.Can(ActionRead, SubjectCustomer))
	assert.False(t, ability.IsPlatformWide())
}

func TestNewAbility_ManageSingleSubject(t *testing.T) {
	ability := NewAbility([]Rule{
		{Action: ActionManage, Subject: SubjectCatalog},
	})

	// manage on one subject implies every action on that subject only
	assert.True(t, ability.Can(ActionRead, SubjectCatalog))
	assert.True(t, ability.Can(ActionDelete, SubjectCatalog))
	assert.False(t, ability.Can(ActionRead, SubjectCustomer))
	assert.False(t, ability.IsPlatformWide())
}

func TestNewAbility_ActionOnAllSubjects(t *testing.T) {
	ability := NewAbility([]Rule{
		{Action: ActionRead, Subject: SubjectAll},
	})

	assert.True(t, ability.Can(ActionRead, SubjectCatalog))
	assert.True(t, ability.Can(ActionRead, SubjectUser))
	assert.False(t, ability.Can(ActionUpdate, SubjectCatalog))
}

func TestNewAbility_EmptyDeniesEverything(t *testing.T) {
	for _, ability := range []*Ability{NewAbility(nil), NewAbility([]Rule{}), nil} {
		for _, action := range AllActions() {
			for _, subject := range AllSubjects() {
				assert.False(t, ability.Can(action, subject))
			}
		}
	}
}

func TestNewAbility_DuplicatesHarmless(t *testing.T) {
	ability := NewAbility([]Rule{
		{Action: ActionRead, Subject: SubjectCatalog},
		{Action: ActionRead, Subject: SubjectCatalog},
		{Action: ActionRead, Subject: SubjectCatalog},
	})

	assert.True(t, ability.Can(ActionRead, SubjectCatalog))
	assert.Len(t, ability.Rules(), 1)
}

func TestNewAbility_ConditionCarriedNotEvaluated(t *testing.T) {
	cond := json.RawMessage(`{"companyId":"T1"}`)
	ability := NewAbility([]Rule{
		{Action: ActionRead, Subject: SubjectCatalog, Condition: cond},
	})

	// matching ignores the condition entirely
	assert.True(t, ability.Can(ActionRead, SubjectCatalog))

	rules := ability.Rules()
	require.Len(t, rules, 1)
	assert.JSONEq(t, string(cond), string(rules[0].Condition))
}

func TestNewAbility_Deterministic(t *testing.T) {
	input := []Rule{
		{Action: ActionManage, Subject: SubjectAll},
		{Action: ActionRead, Subject: SubjectCatalog},
	}

	first := NewAbility(input)
	second := NewAbility(input)
	assert.Equal(t, first.Rules(), second.Rules())
}

func TestFlatten(t *testing.T) {
	a := []Rule{{Action: ActionRead, Subject: SubjectCatalog}}
	b := []Rule{{Action: ActionUpdate, Subject: SubjectCatalog}, {Action: ActionRead, Subject: SubjectUser}}

	flat := Flatten(a, b)
	require.Len(t, flat, 3)
	assert.Equal(t, a[0], flat[0])
	assert.Equal(t, b[0], flat[1])
	assert.Equal(t, b[1], flat[2])

	assert.Empty(t, Flatten())
	assert.Empty(t, Flatten(nil, nil))
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionManage))
	assert.True(t, ValidAction(ActionView))
	assert.False(t, ValidAction(Action("drop")))
}

func TestValidSubject(t *testing.T) {
	assert.True(t, ValidSubject(SubjectAll))
	assert.True(t, ValidSubject(SubjectAuctionBatch))
	assert.False(t, ValidSubject(Subject("Unknown")))
}

func TestRuleString(t *testing.T) {
	r := Rule{Action: ActionRead, Subject: SubjectCatalog}
	assert.Equal(t, "read:Catalog", r.String())

	req := Requirement{Action: ActionUpdate, Subject: SubjectUser}
	assert.Equal(t, "update:User", req.String())
}
