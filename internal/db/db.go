package db

import (
	"context"
	"time"
)

// Store is the Redis facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	JSONStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs filter-only searches. Both the Redis store and the hosted
// Algolia index implement it.
type Searcher interface {
	SearchFilter(ctx context.Context, q *FilterQuery) (*SearchResult, error)
}
