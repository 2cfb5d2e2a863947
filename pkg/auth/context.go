package auth

import (
	"context"

	"github.com/gadaihub/backoffice/pkg/contextkeys"
)

// WithIdentity returns a context carrying the resolved caller identity
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, contextkeys.IdentityKey, identity)
}

// IdentityFromContext extracts the caller identity, or nil for anonymous
// requests
func IdentityFromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(contextkeys.IdentityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
