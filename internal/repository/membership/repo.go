package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
)

// maxOrgsPerUser bounds a single membership lookup.
const maxOrgsPerUser = 1000

const attrMembers = "members"

// store is the consumer interface for org documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo stores organizations as Redis JSON documents and answers "which orgs
// list this user as a member" through an FT index on the member list.
type Repo struct {
	store store
	ks    db.Keyspace
}

// New creates a membership repository.
func New(s store, ks db.Keyspace) *Repo {
	return &Repo{store: s, ks: ks}
}

// PutOrg replaces an organization document.
func (r *Repo) PutOrg(ctx context.Context, o *org.Org) error {
	doc := *o
	if doc.Members == nil {
		doc.Members = []string{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal org: %w", err)
	}

	key := r.ks.Key(o.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// MembershipsOf returns the ids of every org whose member list contains uid.
func (r *Repo) MembershipsOf(ctx context.Context, uid string) (org.Memberships, error) {
	term, err := filter.NewMatch(attrMembers, uid)
	if err != nil {
		return org.Memberships{}, fmt.Errorf("members filter: %w", err)
	}
	clause, err := filter.NewClause(filter.Or, term)
	if err != nil {
		return org.Memberships{}, fmt.Errorf("members filter: %w", err)
	}

	sr, err := r.store.SearchFilter(ctx, &db.FilterQuery{
		IndexName:   r.ks.Index(),
		Filter:      filter.NewExpression(clause),
		HitsPerPage: maxOrgsPerUser,
	})
	if err != nil {
		return org.Memberships{}, fmt.Errorf("search orgs of %s: %w", uid, err)
	}

	ids := make([]string, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		ids = append(ids, r.ks.ID(e.Key))
	}
	return org.NewMemberships(ids...), nil
}

// EnsureSchema creates the member index if it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	def, err := db.NewIndex(r.ks.Index()).
		OnJSON().
		Prefix(r.ks.DocPrefix()).
		TagAs("$.members[*]", attrMembers).
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

// Ping fails when the member index is missing or Redis does not answer.
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
