package identity

import (
	"context"

	"github.com/tutorbook/tutorbook/internal/domain/org"
)

// Verifier resolves a bearer token to a user ID.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// MembershipReader lists the orgs a user belongs to. Implementations may
// return a partial set together with an error.
type MembershipReader interface {
	MembershipsOf(ctx context.Context, uid string) (org.Memberships, error)
}
