package search

import (
	"context"

	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
	"github.com/tutorbook/tutorbook/internal/domain/search/hit"
)

// Repository runs a single filter-only query against the user index.
type Repository interface {
	Search(
		ctx context.Context, expr filter.Expression, optional []string, page, hitsPerPage int,
	) ([]hit.Hit, error)
}

// IdentityResolver turns an optional caller token into org memberships.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) org.Memberships
}
