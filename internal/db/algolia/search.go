package algolia

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"

	"github.com/tutorbook/tutorbook/internal/db"
)

// SearchFilter runs one filter-only query: empty free-text term, the
// rendered filter string, and the optional filters as ranking hints.
func (s *Store) SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if err := s.wait(ctx, db.OpAlgoliaSearch); err != nil {
		return nil, err
	}

	res, err := s.open(q.IndexName).Search("", searchOptions(ctx, q)...)
	if err != nil {
		return nil, &db.Error{Op: db.OpAlgoliaSearch, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, _ := h["objectID"].(string)
		if id == "" {
			continue
		}
		doc, err := json.Marshal(h)
		if err != nil {
			return nil, fmt.Errorf("encode hit %s: %w", id, err)
		}
		entries = append(entries, db.SearchEntry{Key: id, Document: doc})
	}

	return &db.SearchResult{Total: res.NbHits, Entries: entries}, nil
}

func searchOptions(ctx context.Context, q *db.FilterQuery) []interface{} {
	opts := []interface{}{ctx, opt.Page(q.Page)}
	if s := q.Filter.String(); s != "" {
		opts = append(opts, opt.Filters(s))
	}
	if len(q.Optional) > 0 {
		hints := make([]interface{}, len(q.Optional))
		for i, o := range q.Optional {
			hints[i] = o
		}
		opts = append(opts, opt.OptionalFilterOr(hints...))
	}
	if q.HitsPerPage > 0 {
		opts = append(opts, opt.HitsPerPage(q.HitsPerPage))
	}
	return opts
}
