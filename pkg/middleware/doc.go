// Package middleware provides the HTTP middleware chain: request id
// assignment, access logging, bearer-token authentication and Redis-backed
// rate limiting.
//
// Ordering matters: request id and logging run first, then rate limiting,
// then authentication. Authorization itself is a per-route guard in
// pkg/authz, not a chain middleware.
package middleware
