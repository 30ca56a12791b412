package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals malformed search parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidRecord signals a malformed user or org document.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnauthenticated signals a missing or rejected identity token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRateLimited signals a local or upstream quota hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotImplemented signals a feature the configured backend does not offer.
	ErrNotImplemented = errors.New("not implemented")
)
