package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
	"github.com/tutorbook/tutorbook/internal/domain/search/hit"
	"github.com/tutorbook/tutorbook/internal/logger"
	"github.com/tutorbook/tutorbook/internal/metrics"
)

// Outcome is the result of one sub-query. Err set means the query failed;
// otherwise Hits holds its matches, possibly none.
type Outcome struct {
	Filter filter.Expression
	Hits   []hit.Hit
	Err    error
}

// Failed reports whether the sub-query failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// ExecutorConfig tunes the fan-out.
type ExecutorConfig struct {
	Backend       string        // metrics label
	MaxConcurrent int           // 0 = unbounded
	QueryTimeout  time.Duration // 0 = none
}

// Executor issues one query per filter expression concurrently.
type Executor struct {
	repo    Repository
	backend string
	limit   int
	timeout time.Duration
}

// NewExecutor creates an Executor.
func NewExecutor(repo Repository, cfg ExecutorConfig) *Executor {
	backend := cfg.Backend
	if backend == "" {
		backend = "unknown"
	}
	return &Executor{
		repo:    repo,
		backend: backend,
		limit:   cfg.MaxConcurrent,
		timeout: cfg.QueryTimeout,
	}
}

// Execute runs every expression and returns one Outcome per expression, in
// issue order. It waits for all queries and never fails as a whole: a failed
// query is logged and reported in its Outcome without cancelling the rest.
func (e *Executor) Execute(
	ctx context.Context, exprs []filter.Expression, optional []string, page, hitsPerPage int,
) []Outcome {
	outcomes := make([]Outcome, len(exprs))

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, expr := range exprs {
		g.Go(func() error {
			outcomes[i] = e.run(ctx, expr, optional, page, hitsPerPage)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (e *Executor) run(
	ctx context.Context, expr filter.Expression, optional []string, page, hitsPerPage int,
) Outcome {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	hits, err := e.repo.Search(ctx, expr, optional, page, hitsPerPage)
	metrics.SearchQueryDuration.WithLabelValues(e.backend).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SearchQueriesTotal.WithLabelValues(e.backend, "error").Inc()
		logger.FromContext(ctx).Error("search sub-query failed",
			zap.String("filter", expr.String()),
			zap.Error(err),
		)
		return Outcome{Filter: expr, Err: err}
	}

	metrics.SearchQueriesTotal.WithLabelValues(e.backend, "ok").Inc()
	if hits == nil {
		hits = []hit.Hit{}
	}
	return Outcome{Filter: expr, Hits: hits}
}
