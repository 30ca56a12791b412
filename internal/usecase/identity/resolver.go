// Package identity turns an optional caller token into org memberships.
package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/logger"
	"github.com/tutorbook/tutorbook/internal/metrics"
)

// Resolver verifies a caller token and looks up the caller's memberships.
// It never fails: anything that goes wrong degrades the caller toward
// anonymous.
type Resolver struct {
	verifier Verifier
	members  MembershipReader
}

// NewResolver creates a Resolver.
func NewResolver(v Verifier, m MembershipReader) *Resolver {
	return &Resolver{verifier: v, members: m}
}

// Resolve returns the memberships of the token's owner. An empty token, a
// rejected token or a failed lookup yields whatever was collected so far,
// possibly the empty set.
func (r *Resolver) Resolve(ctx context.Context, token string) org.Memberships {
	if token == "" {
		metrics.IdentityResolutionsTotal.WithLabelValues("anonymous").Inc()
		return org.Memberships{}
	}

	log := logger.FromContext(ctx)

	uid, err := r.verifier.Verify(ctx, token)
	if err != nil {
		metrics.IdentityResolutionsTotal.WithLabelValues("invalid_token").Inc()
		log.Warn("token verification failed, continuing as anonymous", zap.Error(err))
		return org.Memberships{}
	}

	m, err := r.members.MembershipsOf(ctx, uid)
	if err != nil {
		metrics.IdentityResolutionsTotal.WithLabelValues("lookup_failed").Inc()
		log.Warn("membership lookup failed",
			zap.String("uid", uid),
			zap.Int("collected", m.Len()),
			zap.Error(err),
		)
		return m
	}

	metrics.IdentityResolutionsTotal.WithLabelValues("ok").Inc()
	return m
}
