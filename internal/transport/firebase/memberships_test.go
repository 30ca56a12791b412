package firebase

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type fakeIterator struct {
	docs    []*firestore.DocumentSnapshot
	err     error
	stopped bool
}

func (f *fakeIterator) Next() (*firestore.DocumentSnapshot, error) {
	if len(f.docs) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, iterator.Done
	}
	d := f.docs[0]
	f.docs = f.docs[1:]
	return d, nil
}

func (f *fakeIterator) Stop() { f.stopped = true }

func snap(id string) *firestore.DocumentSnapshot {
	return &firestore.DocumentSnapshot{Ref: &firestore.DocumentRef{ID: id}}
}

func storeWith(it *fakeIterator, gotUID *string) *MembershipStore {
	return &MembershipStore{
		orgsOf: func(_ context.Context, uid string) documentIterator {
			if gotUID != nil {
				*gotUID = uid
			}
			return it
		},
	}
}

func TestMembershipStore_MembershipsOf(t *testing.T) {
	it := &fakeIterator{docs: []*firestore.DocumentSnapshot{snap("quarantunes"), snap("gunn")}}
	var uid string

	m, err := storeWith(it, &uid).MembershipsOf(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "u1" {
		t.Errorf("queried uid = %q", uid)
	}
	if m.Len() != 2 || !m.Contains("gunn") || !m.Contains("quarantunes") {
		t.Errorf("memberships = %v", m.IDs())
	}
	if !it.stopped {
		t.Error("iterator not stopped")
	}
}

func TestMembershipStore_NoOrgs(t *testing.T) {
	m, err := storeWith(&fakeIterator{}, nil).MembershipsOf(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty set, got %v", m.IDs())
	}
}

func TestMembershipStore_PartialOnError(t *testing.T) {
	boom := errors.New("deadline exceeded")
	it := &fakeIterator{docs: []*firestore.DocumentSnapshot{snap("gunn")}, err: boom}

	m, err := storeWith(it, nil).MembershipsOf(context.Background(), "u1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if !m.Contains("gunn") || m.Len() != 1 {
		t.Errorf("expected orgs read before the error, got %v", m.IDs())
	}
	if !it.stopped {
		t.Error("iterator not stopped")
	}
}
