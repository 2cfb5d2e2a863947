package auth

import (
	"sync"
	"time"

	"github.com/gadaihub/backoffice/pkg/acl"
)

// Identity is the resolved caller of a request: the authenticated user,
// their tenant membership, and the flattened permission rules from all of
// their roles. It lives for exactly one request.
type Identity struct {
	UserID         int64      `json:"user_id"`
	UUID           string     `json:"uuid"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	CompanyID      *string    `json:"company_id,omitempty"`
	OwnedCompanyID *string    `json:"owned_company_id,omitempty"`
	BranchID       *string    `json:"branch_id,omitempty"`
	RoleCodes      []string   `json:"role_codes"`
	Rules          []acl.Rule `json:"-"`

	abilityOnce sync.Once
	ability     *acl.Ability
}

// Ability returns the caller's expanded ability, building it on first use
// and reusing it for the rest of the request.
func (id *Identity) Ability() *acl.Ability {
	if id == nil {
		return nil
	}
	id.abilityOnce.Do(func() {
		id.ability = acl.NewAbility(id.Rules)
	})
	return id.ability
}

// HasRole reports whether the identity carries the named role code
func (id *Identity) HasRole(code string) bool {
	if id == nil {
		return false
	}
	for _, c := range id.RoleCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Session is one issued login token. Only the SHA256 hash of the token is
// stored; the raw token exists client-side only.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
