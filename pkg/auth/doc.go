// Package auth provides authentication for the back-office API: password
// login with opaque session tokens, optional OpenID Connect single sign-on,
// and resolution of a session token into a caller Identity carrying the
// flattened permission rules used by the authorization guard.
//
// Tokens are random 256-bit values with a "gdt_" prefix; only their SHA256
// hash is stored. Identities are request-scoped and build their acl.Ability
// lazily, once per request.
package auth
