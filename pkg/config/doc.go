// Package config loads application configuration from BACKOFFICE_*
// environment variables, with sensible defaults for local development.
// LoadConfig validates the result; a missing database URL or an
// inconsistent OIDC block fails startup rather than failing the first
// request.
package config
