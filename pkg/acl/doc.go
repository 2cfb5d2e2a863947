// Package acl defines the permission model and the per-request ability
// used to authorize every operation in the back-office API.
//
// # Overview
//
// A permission rule pairs an action (create, read, update, delete, view,
// or the wildcard manage) with a subject (one tag per resource type, or
// the wildcard All). Roles carry sets of rules; a caller's ability is the
// expanded union of the rules from all of their roles, built fresh for
// each request.
//
// # Rules and Requirements
//
// Rules are what roles grant:
//
//	rule := acl.Rule{Action: acl.ActionRead, Subject: acl.SubjectCatalog}
//
// Requirements are what operations demand:
//
//	req := acl.Requirement{Action: acl.ActionRead, Subject: acl.SubjectCatalog}
//
// # Wildcard Expansion
//
// A manage/All rule is expanded at ability construction into one explicit
// manage rule per subject in AllSubjects, so lookups never special-case
// wildcards at decision time. Adding a resource type to the system means
// adding one Subject constant and one AllSubjects entry.
//
// # Abilities
//
//	ability := acl.NewAbility(acl.Flatten(roleRules...))
//	if ability.Can(acl.ActionUpdate, acl.SubjectCatalog) {
//		// caller may update catalogs
//	}
//
// An ability built from no rules denies everything. Abilities are pure
// values: no locking, no shared state, safe for concurrent requests.
//
// # Conditions
//
// Rule.Condition is carried structurally but deliberately not evaluated
// here. Row-level scoping is the tenant filter layer's job (pkg/tenant);
// ability matching stays a pure action/subject decision.
//
// # Related Packages
//
//   - pkg/authz: consults abilities to allow or deny operations
//   - pkg/tenant: derives the row-level company scope
//   - pkg/roles: persists roles and their rule sets
package acl
