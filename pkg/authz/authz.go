package authz

import (
	"errors"
	"fmt"

	"github.com/gadaihub/backoffice/pkg/acl"
	"github.com/gadaihub/backoffice/pkg/auth"
)

var (
	// ErrUnauthenticated means no caller identity could be resolved for a
	// non-public operation. Distinct from ErrForbidden: the transport maps
	// it to 401, not 403.
	ErrUnauthenticated = errors.New("authentication required")
)

// ForbiddenError means the caller is known but their ability does not
// satisfy the operation's requirements. It names the first unmet pair.
type ForbiddenError struct {
	Requirement acl.Requirement
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("you are not allowed to %s %s", e.Requirement.Action, e.Requirement.Subject)
}

// IsForbidden reports whether err is a permission denial
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

// RouteSpec declares the authorization contract of one operation. It is a
// plain value attached at route registration; the guard never inspects
// handlers, only their spec.
type RouteSpec struct {
	// Name identifies the operation in logs and metrics, e.g. "catalogs.list"
	Name string
	// Public operations skip authentication entirely
	Public bool
	// Require lists the action/subject pairs the caller must ALL satisfy,
	// checked in order. Empty with Public=false means any authenticated
	// caller is allowed.
	Require []acl.Requirement
}

// Authorize applies the decision procedure for one operation: public
// operations always pass; otherwise the identity must be present and its
// ability must satisfy every requirement in order. The first unmet
// requirement short-circuits the check.
//
// Pure and side-effect free: the identity is not mutated and nothing is
// cached beyond the ability the identity itself memoizes for the request.
func Authorize(identity *auth.Identity, spec RouteSpec) error {
	if spec.Public {
		return nil
	}

	if identity == nil {
		return ErrUnauthenticated
	}

	ability := identity.Ability()
	for _, req := range spec.Require {
		if !ability.Can(req.Action, req.Subject) {
			return &ForbiddenError{Requirement: req}
		}
	}

	return nil
}
