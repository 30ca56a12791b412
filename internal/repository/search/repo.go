package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
	"github.com/tutorbook/tutorbook/internal/domain/search/hit"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository over one index.
type Repo struct {
	store     store
	index     string
	docPrefix string
}

// New creates a search repository. docPrefix is stripped from entry keys to
// recover object ids; hosted indexes return bare ids and pass "".
func New(s store, index, docPrefix string) *Repo {
	return &Repo{store: s, index: index, docPrefix: docPrefix}
}

// Index returns the name of the searched index.
func (r *Repo) Index() string {
	return r.index
}

// Search runs one filter-only query and returns its hits in index order.
func (r *Repo) Search(
	ctx context.Context, expr filter.Expression, optional []string, page, hitsPerPage int,
) ([]hit.Hit, error) {
	sr, err := r.store.SearchFilter(ctx, &db.FilterQuery{
		IndexName:   r.index,
		Filter:      expr,
		Optional:    optional,
		Page:        page,
		HitsPerPage: hitsPerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.index, err)
	}

	return toHits(sr, r.docPrefix), nil
}

// toHits converts db.SearchResult into hits. A successful query with no
// matches yields an empty, non-nil slice.
func toHits(sr *db.SearchResult, prefix string) []hit.Hit {
	if sr == nil {
		return []hit.Hit{}
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		if id == "" {
			continue
		}
		hits = append(hits, hit.New(id, entry.Document))
	}
	return hits
}
