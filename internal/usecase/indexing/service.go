// Package indexing keeps the search indexes in sync with user, org and
// appointment documents.
package indexing

import (
	"context"
	"fmt"

	"github.com/tutorbook/tutorbook/internal/domain"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/user"
)

// Service converts and stores index records.
type Service struct {
	repo  Repository
	orgs  OrgWriter
	appts ApptRepository
}

// New creates an indexing service. orgs can be nil when org documents are
// owned by another system.
func New(repo Repository, orgs OrgWriter) *Service {
	return &Service{repo: repo, orgs: orgs}
}

// IndexUser validates u and replaces its index record.
func (s *Service) IndexUser(ctx context.Context, u *user.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}

	rec := user.NewIndexRecord(u)
	if err := s.repo.Put(ctx, &rec); err != nil {
		return fmt.Errorf("put user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns the profile as currently stored in the index, unprojected.
func (s *Service) GetUser(ctx context.Context, id string) (user.User, error) {
	if id == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidRecord)
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return user.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return rec.User(), nil
}

// DeleteUser removes a user's index record.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidRecord)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// EnsureSchema declares the filterable attributes on the user index and,
// when appointment indexing is enabled, on the appointment index.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure user index schema: %w", err)
	}
	if s.appts != nil {
		if err := s.appts.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure appt index schema: %w", err)
		}
	}
	return nil
}

// PutOrg stores an organization and its member list.
func (s *Service) PutOrg(ctx context.Context, o *org.Org) error {
	if s.orgs == nil {
		return fmt.Errorf("org writes: %w", domain.ErrNotImplemented)
	}
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	if err := s.orgs.PutOrg(ctx, o); err != nil {
		return fmt.Errorf("put org %s: %w", o.ID, err)
	}
	return nil
}
