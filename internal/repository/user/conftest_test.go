package user

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tutorbook/tutorbook/internal/db"
	domuser "github.com/tutorbook/tutorbook/internal/domain/user"
)

// mockStore implements the Redis consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn         func(ctx context.Context, key string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

// mockObjects implements the hosted consumer interface for tests.
type mockObjects struct {
	objects    map[string]string
	saved      []any
	deleted    []string
	attributes []string
	pingErr    error
	err        error
}

func (m *mockObjects) Ping(context.Context) error { return m.pingErr }

func (m *mockObjects) GetObject(_ context.Context, _ string, objectID string, dest any) error {
	if m.err != nil {
		return m.err
	}
	raw, ok := m.objects[objectID]
	if !ok {
		return db.ErrKeyNotFound
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (m *mockObjects) SaveObject(_ context.Context, _ string, record any) error {
	m.saved = append(m.saved, record)
	return m.err
}

func (m *mockObjects) DeleteObject(_ context.Context, _ string, objectID string) error {
	m.deleted = append(m.deleted, objectID)
	return m.err
}

func (m *mockObjects) SetFilterableAttributes(_ context.Context, _ string, attrs []string) error {
	m.attributes = attrs
	return m.err
}

var testKeyspace = db.Keyspace{Prefix: "tutorbook:", Name: "users"}

func testRecord(t *testing.T) *domuser.IndexRecord {
	t.Helper()
	u := domuser.User{
		ID:   "u1",
		Name: "Ada Lovelace",
		Availability: []domuser.Timeslot{{
			From: time.UnixMilli(1000).UTC(),
			To:   time.UnixMilli(2000).UTC(),
		}},
		Tutoring: domuser.Subjects{Subjects: []string{"Algebra"}},
	}
	rec := domuser.NewIndexRecord(&u)
	return &rec
}
