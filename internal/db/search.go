package db

import "github.com/tutorbook/tutorbook/internal/domain/search/filter"

// FilterQuery is the input for a filter-only search. The free-text term is
// always empty.
type FilterQuery struct {
	IndexName string
	Filter    filter.Expression
	// Optional filters boost matching records without excluding others.
	// Backends without ranking hints ignore them.
	Optional    []string
	Page        int
	HitsPerPage int
}

// Offset returns the zero-based position of the first requested record.
func (q *FilterQuery) Offset() int {
	return q.Page * q.HitsPerPage
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single record from a search: its key (or object id) and
// the stored document as JSON.
type SearchEntry struct {
	Key      string
	Document []byte
}
