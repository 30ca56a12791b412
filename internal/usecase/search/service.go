package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
	"github.com/tutorbook/tutorbook/internal/domain/search/hit"
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
	"github.com/tutorbook/tutorbook/internal/domain/user"
	"github.com/tutorbook/tutorbook/internal/logger"
	"github.com/tutorbook/tutorbook/internal/metrics"
)

// Service lists users matching a query, shaped for the calling user.
type Service struct {
	exec     *Executor
	identity IdentityResolver
}

// New creates a search service.
func New(exec *Executor, identity IdentityResolver) *Service {
	return &Service{exec: exec, identity: identity}
}

// ListUsers compiles q into one filter per timeslot, runs them concurrently,
// merges the hits and projects each user for the caller identified by token.
// Failed sub-queries and identity problems only narrow the result. The only
// error is a cancelled request.
func (s *Service) ListUsers(ctx context.Context, q *query.Query, token string) ([]user.Record, error) {
	log := logger.FromContext(ctx)

	exprs := filter.Compile(q)
	if ce := log.Check(zap.DebugLevel, "compiled user search"); ce != nil {
		ce.Write(
			zap.Strings("filters", filter.CompileStrings(q)),
			zap.Strings("optional", filter.Optional(q)),
		)
	}

	outcomes := s.exec.Execute(ctx, exprs, filter.Optional(q), q.Page(), q.HitsPerPage())
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	hits := Merge(outcomes)
	metrics.SearchMergedHits.Observe(float64(len(hits)))

	users := hydrate(ctx, hits)
	memberships := s.identity.Resolve(ctx, token)

	records := make([]user.Record, 0, len(users))
	for _, u := range users {
		records = append(records, user.Project(u, memberships))
	}
	return records, nil
}

// hydrate decodes hit sources into users. Undecodable hits are logged and
// skipped.
func hydrate(ctx context.Context, hits []hit.Hit) []user.User {
	users := make([]user.User, 0, len(hits))
	for _, h := range hits {
		rec, err := user.DecodeIndexRecord(h.ObjectID, h.Source)
		if err != nil {
			logger.FromContext(ctx).Warn("skipping undecodable hit",
				zap.String("object_id", h.ObjectID),
				zap.Error(err),
			)
			continue
		}
		users = append(users, rec.User())
	}
	return users
}
