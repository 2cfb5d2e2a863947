// Package storage defines the error taxonomy shared by all resource
// stores. Stores translate driver-level failures into these sentinels so
// handlers can map them to HTTP statuses without knowing about Postgres.
package storage

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist or is not
	// visible to the caller's tenant.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a uniqueness or state-transition violation.
	ErrConflict = errors.New("record conflict")
)
