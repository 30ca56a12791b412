package algolia

import (
	"context"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"golang.org/x/time/rate"

	"github.com/tutorbook/tutorbook/internal/db"
)

// Compile-time check: Store serves filter searches.
var _ db.Searcher = (*Store)(nil)

// Config holds credentials and quota settings for the hosted index.
type Config struct {
	AppID  string
	APIKey string
	// Index is probed by Ping.
	Index string
	// RequestsPerSecond caps outbound calls; 0 disables the limiter.
	RequestsPerSecond float64
	Burst             int
}

// index is the subset of *search.Index used by the store.
type index interface {
	Search(query string, opts ...interface{}) (search.QueryRes, error)
	GetObject(objectID string, object interface{}, opts ...interface{}) error
	SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error)
	DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error)
	SetSettings(settings search.Settings, opts ...interface{}) (search.UpdateTaskRes, error)
	Exists() (bool, error)
}

// Store talks to a hosted Algolia application. Every call passes through a
// token-bucket limiter shared by all indexes of the application.
type Store struct {
	open    func(name string) index
	limiter *rate.Limiter
	probe   string
}

// NewStore creates an Algolia store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("app id and api key are required")
	}

	client := search.NewClient(cfg.AppID, cfg.APIKey)
	return newStore(func(name string) index { return client.InitIndex(name) }, cfg), nil
}

func newStore(open func(name string) index, cfg Config) *Store {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Store{
		open:    open,
		limiter: rate.NewLimiter(limit, burst),
		probe:   cfg.Index,
	}
}

// Ping checks that the application answers for the configured index.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if _, err := s.open(s.probe).Exists(); err != nil {
		return &db.Error{Op: db.OpAlgoliaExists, Err: err}
	}
	return nil
}

// wait blocks on the limiter.
func (s *Store) wait(ctx context.Context, op string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}
