// Package tenant derives the company scope of a request and injects it
// into list filters so callers only see their own company's rows by
// default.
//
// The effective tenant is the caller's company membership, falling back to
// the company they own. Precedence when a request also carries an explicit
// company filter: platform-wide callers (manage/All) may filter any
// company; tenant-scoped callers may only name their own — a differing
// explicit filter is rejected rather than silently honored, closing the
// cross-tenant read hole that override-wins semantics would leave open.
package tenant

import (
	"errors"

	"github.com/gadaihub/backoffice/pkg/auth"
)

// FilterKey is the canonical equality-filter key for the tenant column in
// list requests
const FilterKey = "companyId"

// ErrCrossTenant is returned when a tenant-scoped caller supplies an
// explicit company filter that differs from their own company. Mapped to
// a forbidden response at the transport boundary.
var ErrCrossTenant = errors.New("cannot filter by another company")

// InferredCompanyID computes the caller's effective tenant: company
// membership first, then company ownership, else nil (no tenant context).
func InferredCompanyID(identity *auth.Identity) *string {
	if identity == nil {
		return nil
	}
	if identity.CompanyID != nil {
		return identity.CompanyID
	}
	return identity.OwnedCompanyID
}

// ApplyScope merges the caller's tenant scope into a list filter map,
// returning the map that the query builder should see.
//
//   - No explicit company filter: the inferred tenant (if any) is added.
//   - Explicit filter, platform-wide caller: the explicit value wins,
//     enabling cross-tenant listing for manage/All roles.
//   - Explicit filter, tenant-scoped caller: allowed only when it names
//     the caller's own company; otherwise ErrCrossTenant.
//
// The filters map is mutated and returned. A caller with no tenant context
// and no explicit filter yields no tenant predicate at all (platform-wide
// listing).
func ApplyScope(identity *auth.Identity, filters map[string]any) (map[string]any, error) {
	if filters == nil {
		filters = make(map[string]any)
	}

	inferred := InferredCompanyID(identity)
	explicit, hasExplicit := filters[FilterKey]

	if !hasExplicit {
		if inferred != nil {
			filters[FilterKey] = *inferred
		}
		return filters, nil
	}

	if identity != nil && identity.Ability().IsPlatformWide() {
		return filters, nil
	}

	if inferred != nil && explicit != *inferred {
		return nil, ErrCrossTenant
	}

	return filters, nil
}
