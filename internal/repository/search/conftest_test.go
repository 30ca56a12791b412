package search

import (
	"context"
	"testing"

	"github.com/tutorbook/tutorbook/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFilterFn func(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if m.searchFilterFn != nil {
		return m.searchFilterFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T, prefix string) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "tutorbook:users:idx", prefix), ms
}
