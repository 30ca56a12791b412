package indexing

import (
	"context"

	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/user"
)

// Repository writes user records into the search index.
type Repository interface {
	Put(ctx context.Context, rec *user.IndexRecord) error
	Get(ctx context.Context, id string) (user.IndexRecord, error)
	Delete(ctx context.Context, id string) error
	EnsureSchema(ctx context.Context) error
}

// OrgWriter stores organization documents for membership lookups.
type OrgWriter interface {
	PutOrg(ctx context.Context, o *org.Org) error
}

// ApptRepository writes appointment records into the appointment index.
type ApptRepository interface {
	Put(ctx context.Context, rec *appt.IndexRecord) error
	Delete(ctx context.Context, id string) error
	EnsureSchema(ctx context.Context) error
}
