package appt

import (
	"context"
	"fmt"

	domappt "github.com/tutorbook/tutorbook/internal/domain/appt"
)

type objectStore interface {
	SaveObject(ctx context.Context, indexName string, record any) error
	DeleteObject(ctx context.Context, indexName, objectID string) error
	SetFilterableAttributes(ctx context.Context, indexName string, attrs []string) error
}

// HostedRepo keeps appointment records in a hosted Algolia index.
type HostedRepo struct {
	store objectStore
	index string
}

// NewHosted creates an Algolia-backed appointment repository.
func NewHosted(s objectStore, index string) *HostedRepo {
	return &HostedRepo{store: s, index: index}
}

// Put replaces the stored record.
func (r *HostedRepo) Put(ctx context.Context, rec *domappt.IndexRecord) error {
	if err := r.store.SaveObject(ctx, r.index, rec); err != nil {
		return fmt.Errorf("save object %s: %w", rec.ObjectID, err)
	}
	return nil
}

// Delete removes a record.
func (r *HostedRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteObject(ctx, r.index, id); err != nil {
		return fmt.Errorf("delete object %s: %w", id, err)
	}
	return nil
}

// EnsureSchema declares handles and orgs as filterable.
func (r *HostedRepo) EnsureSchema(ctx context.Context) error {
	if err := r.store.SetFilterableAttributes(ctx, r.index, domappt.FilterableAttributes); err != nil {
		return fmt.Errorf("set settings %s: %w", r.index, err)
	}
	return nil
}
