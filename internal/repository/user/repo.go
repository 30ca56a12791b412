package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain"
	domuser "github.com/tutorbook/tutorbook/internal/domain/user"
)

// store is the consumer interface for Redis user documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo keeps user index records as Redis JSON documents under a keyspace
// covered by an FT index. Implements usecase/indexing.Repository.
type Repo struct {
	store store
	ks    db.Keyspace
}

// New creates a Redis-backed user index repository.
func New(s store, ks db.Keyspace) *Repo {
	return &Repo{store: s, ks: ks}
}

// Put replaces the stored record.
func (r *Repo) Put(ctx context.Context, rec *domuser.IndexRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal index record: %w", err)
	}

	key := r.ks.Key(rec.ObjectID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get loads a stored record. A missing record yields domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domuser.IndexRecord, error) {
	key := r.ks.Key(id)
	data, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domuser.IndexRecord{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return domuser.IndexRecord{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return domuser.DecodeIndexRecord(id, data)
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
	def, err := buildIndex(r.ks)
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

// Ping fails when the FT index is missing or Redis does not answer.
func (r *Repo) Ping(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, r.ks.Index())
	if err != nil {
		return fmt.Errorf("ft.info %s: %w", r.ks.Index(), err)
	}
	if !ok {
		return fmt.Errorf("index %s does not exist", r.ks.Index())
	}
	return nil
}
