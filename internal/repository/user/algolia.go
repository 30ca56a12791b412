package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain"
	domuser "github.com/tutorbook/tutorbook/internal/domain/user"
)

// objectStore is the consumer interface for hosted index records (ISP).
type objectStore interface {
	Ping(ctx context.Context) error
	GetObject(ctx context.Context, indexName, objectID string, dest any) error
	SaveObject(ctx context.Context, indexName string, record any) error
	DeleteObject(ctx context.Context, indexName, objectID string) error
	SetFilterableAttributes(ctx context.Context, indexName string, attrs []string) error
}

// HostedRepo keeps user index records in a hosted Algolia index.
// Implements usecase/indexing.Repository.
type HostedRepo struct {
	store objectStore
	index string
}

// NewHosted creates an Algolia-backed user index repository.
func NewHosted(s objectStore, index string) *HostedRepo {
	return &HostedRepo{store: s, index: index}
}

// Put replaces the stored record.
func (r *HostedRepo) Put(ctx context.Context, rec *domuser.IndexRecord) error {
	if err := r.store.SaveObject(ctx, r.index, rec); err != nil {
		return fmt.Errorf("save object %s: %w", rec.ObjectID, err)
	}
	return nil
}

// Get loads a stored record. A missing record yields domain.ErrNotFound.
func (r *HostedRepo) Get(ctx context.Context, id string) (domuser.IndexRecord, error) {
	var rec domuser.IndexRecord
	if err := r.store.GetObject(ctx, r.index, id, &rec); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domuser.IndexRecord{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return domuser.IndexRecord{}, fmt.Errorf("get object %s: %w", id, err)
	}
	rec.ObjectID = id
	return rec, nil
}

// Delete removes a record. Deleting an absent record succeeds.
func (r *HostedRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteObject(ctx, r.index, id); err != nil {
		return fmt.Errorf("delete object %s: %w", id, err)
	}
	return nil
}

// EnsureSchema declares the filterable attributes on the index.
func (r *HostedRepo) EnsureSchema(ctx context.Context) error {
	if err := r.store.SetFilterableAttributes(ctx, r.index, domuser.FilterableAttributes); err != nil {
		return fmt.Errorf("set settings %s: %w", r.index, err)
	}
	return nil
}

// Ping probes the hosted application.
func (r *HostedRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
