package firebase

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tutorbook/tutorbook/internal/domain/org"
)

// DefaultOrgsCollection is where org documents live.
const DefaultOrgsCollection = "orgs"

// documentIterator is the subset of *firestore.DocumentIterator used here.
type documentIterator interface {
	Next() (*firestore.DocumentSnapshot, error)
	Stop()
}

// MembershipStore looks up org memberships in Firestore. Org documents carry
// a members array of uids.
type MembershipStore struct {
	orgsOf func(ctx context.Context, uid string) documentIterator
}

// NewMembershipStore queries collection on the given client.
func NewMembershipStore(client *firestore.Client, collection string) *MembershipStore {
	if collection == "" {
		collection = DefaultOrgsCollection
	}
	return &MembershipStore{
		orgsOf: func(ctx context.Context, uid string) documentIterator {
			return client.Collection(collection).
				Where("members", "array-contains", uid).
				Documents(ctx)
		},
	}
}

// MembershipsOf returns the orgs uid belongs to. On a read error it returns
// the orgs collected so far along with the error.
func (s *MembershipStore) MembershipsOf(ctx context.Context, uid string) (org.Memberships, error) {
	it := s.orgsOf(ctx, uid)
	defer it.Stop()

	var ids []string
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return org.NewMemberships(ids...), fmt.Errorf("list orgs of %s: %w", uid, err)
		}
		if doc.Ref != nil {
			ids = append(ids, doc.Ref.ID)
		}
	}
	return org.NewMemberships(ids...), nil
}
