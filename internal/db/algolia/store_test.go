package algolia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/errs"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
)

// fakeIndex records calls and returns canned responses.
type fakeIndex struct {
	name string

	searchOpts []interface{}
	searchRes  search.QueryRes
	searchErr  error

	objects map[string]string
	getErr  error

	saved     interface{}
	deleted   string
	settings  search.Settings
	writeErr  error
	existsErr error
}

func (f *fakeIndex) Search(_ string, opts ...interface{}) (search.QueryRes, error) {
	f.searchOpts = opts
	return f.searchRes, f.searchErr
}

func (f *fakeIndex) GetObject(objectID string, object interface{}, _ ...interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.objects[objectID]
	if !ok {
		return &errs.AlgoliaErr{Message: "ObjectID does not exist", Status: http.StatusNotFound}
	}
	return json.Unmarshal([]byte(raw), object)
}

func (f *fakeIndex) SaveObject(object interface{}, _ ...interface{}) (search.SaveObjectRes, error) {
	f.saved = object
	return search.SaveObjectRes{}, f.writeErr
}

func (f *fakeIndex) DeleteObject(objectID string, _ ...interface{}) (search.DeleteTaskRes, error) {
	f.deleted = objectID
	return search.DeleteTaskRes{}, f.writeErr
}

func (f *fakeIndex) SetSettings(settings search.Settings, _ ...interface{}) (search.UpdateTaskRes, error) {
	f.settings = settings
	return search.UpdateTaskRes{}, f.writeErr
}

func (f *fakeIndex) Exists() (bool, error) {
	return true, f.existsErr
}

func newTestStore(t *testing.T, idx *fakeIndex) *Store {
	t.Helper()
	return newStore(func(name string) index {
		idx.name = name
		return idx
	}, Config{Index: "users"})
}

func TestSearchFilter_Hits(t *testing.T) {
	idx := &fakeIndex{searchRes: search.QueryRes{
		NbHits: 2,
		Hits: []map[string]interface{}{
			{"objectID": "u1", "name": "Ada Lovelace"},
			{"name": "no id"},
			{"objectID": "u2", "name": "Alan Turing"},
		},
	}}
	s := newTestStore(t, idx)

	b, _ := filter.NewBool("visible", true)
	res, err := s.SearchFilter(context.Background(), &db.FilterQuery{
		IndexName:   "test-users",
		Filter:      filter.NewExpression(filter.Bare(b)),
		Optional:    []string{"featured:mentoring"},
		Page:        1,
		HitsPerPage: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.name != "test-users" {
		t.Errorf("searched index %q", idx.name)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entries[0].Key != "u1" || !strings.Contains(string(res.Entries[0].Document), `"Ada Lovelace"`) {
		t.Errorf("entry[0] = %s %s", res.Entries[0].Key, res.Entries[0].Document)
	}

	var sawFilters, sawPage, sawHits, sawOptional bool
	for _, o := range idx.searchOpts {
		switch v := o.(type) {
		case *opt.FiltersOption:
			sawFilters = v.Get() == "visible=1"
		case *opt.PageOption:
			sawPage = v.Get() == 1
		case *opt.HitsPerPageOption:
			sawHits = v.Get() == 50
		case *opt.OptionalFiltersOption:
			sawOptional = true
		}
	}
	if !sawFilters || !sawPage || !sawHits || !sawOptional {
		t.Errorf("missing options: filters=%v page=%v hits=%v optional=%v",
			sawFilters, sawPage, sawHits, sawOptional)
	}
}

func TestSearchFilter_EmptyFilterOmitted(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestStore(t, idx)

	if _, err := s.SearchFilter(context.Background(), &db.FilterQuery{IndexName: "users"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, o := range idx.searchOpts {
		if _, ok := o.(*opt.FiltersOption); ok {
			t.Error("empty expression must not send a filters option")
		}
	}
}

func TestSearchFilter_Error(t *testing.T) {
	idx := &fakeIndex{searchErr: errors.New("unreachable")}
	s := newTestStore(t, idx)

	_, err := s.SearchFilter(context.Background(), &db.FilterQuery{IndexName: "users"})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpAlgoliaSearch {
		t.Errorf("expected algolia search db.Error, got %v", err)
	}
}

func TestSearchFilter_CanceledContext(t *testing.T) {
	idx := &fakeIndex{}
	s := newStore(func(string) index { return idx }, Config{RequestsPerSecond: 0.001, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.SearchFilter(ctx, &db.FilterQuery{IndexName: "users"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if idx.searchOpts != nil {
		t.Error("search must not be issued when the limiter wait fails")
	}
}

func TestSearchFilter_RequiresIndex(t *testing.T) {
	s := newTestStore(t, &fakeIndex{})
	if _, err := s.SearchFilter(context.Background(), &db.FilterQuery{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestObjects(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestStore(t, idx)
	ctx := context.Background()

	rec := map[string]any{"objectID": "u1"}
	if err := s.SaveObject(ctx, "users", rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if idx.saved == nil {
		t.Error("record not saved")
	}

	if err := s.DeleteObject(ctx, "users", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if idx.deleted != "u1" {
		t.Errorf("deleted %q", idx.deleted)
	}

	if err := s.SetFilterableAttributes(ctx, "users", []string{"orgs", "langs"}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if got := idx.settings.AttributesForFaceting.Get(); len(got) != 2 || got[0] != "orgs" {
		t.Errorf("attributesForFaceting = %v", got)
	}

	idx.writeErr = errors.New("quota")
	if err := s.DeleteObject(ctx, "users", "u1"); err == nil {
		t.Error("expected error")
	}
}

func TestPing(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestStore(t, idx)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.name != "users" {
		t.Errorf("probed %q", idx.name)
	}

	idx.existsErr = errors.New("forbidden")
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestNewStore_RequiresCredentials(t *testing.T) {
	if _, err := NewStore(Config{AppID: "app"}); err == nil {
		t.Error("expected error without api key")
	}
}

func TestGetObject(t *testing.T) {
	idx := &fakeIndex{objects: map[string]string{"u1": `{"objectID":"u1","name":"Ada Lovelace"}`}}
	s := newTestStore(t, idx)

	var got struct {
		ObjectID string `json:"objectID"`
		Name     string `json:"name"`
	}
	if err := s.GetObject(context.Background(), "test-users", "u1", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ada Lovelace" || idx.name != "test-users" {
		t.Errorf("got %+v from index %q", got, idx.name)
	}

	if err := s.GetObject(context.Background(), "test-users", "missing", &got); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGetObject_Error(t *testing.T) {
	s := newTestStore(t, &fakeIndex{getErr: errors.New("unreachable")})

	var dest map[string]any
	err := s.GetObject(context.Background(), "test-users", "u1", &dest)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpAlgoliaGetObject {
		t.Fatalf("expected db.Error with getObject op, got %v", err)
	}
}
