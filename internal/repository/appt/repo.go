// Package appt stores appointment index records in Redis or a hosted index.
package appt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tutorbook/tutorbook/internal/db"
	domappt "github.com/tutorbook/tutorbook/internal/domain/appt"
)

// store is the consumer interface for Redis appointment documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo keeps appointment records as Redis JSON documents.
// Implements usecase/indexing.ApptRepository.
type Repo struct {
	store store
	ks    db.Keyspace
}

// New creates a Redis-backed appointment repository.
func New(s store, ks db.Keyspace) *Repo {
	return &Repo{store: s, ks: ks}
}

// Put replaces the stored record.
func (r *Repo) Put(ctx context.Context, rec *domappt.IndexRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal appt record: %w", err)
	}

	key := r.ks.Key(rec.ObjectID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Delete removes a record. Deleting an absent record succeeds.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.ks.Key(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// EnsureSchema creates the FT index if it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	def, err := db.NewIndex(r.ks.Index()).
		OnJSON().
		Prefix(r.ks.DocPrefix()).
		TagAs("$.handles[*]", "handles").
		TagAs("$.orgs[*]", "orgs").
		TagAs("$.subjects[*]", "subjects").
		NumericAs("$.time.from", "time_from").
		NumericAs("$.time.to", "time_to").
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}
