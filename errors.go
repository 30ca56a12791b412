package tutorbook

import "github.com/tutorbook/tutorbook/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidQuery    = domain.ErrInvalidQuery
	ErrInvalidRecord   = domain.ErrInvalidRecord
	ErrNotImplemented  = domain.ErrNotImplemented
	ErrUnauthenticated = domain.ErrUnauthenticated
)
