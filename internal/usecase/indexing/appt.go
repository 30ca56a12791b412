package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tutorbook/tutorbook/internal/domain"
	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/logger"
)

// WithAppts enables appointment indexing on s.
func (s *Service) WithAppts(appts ApptRepository) *Service {
	s.appts = appts
	return s
}

// IndexAppt validates a and replaces its index record. The record carries
// the orgs of every attendee found in the user index; attendees missing
// from it are logged and skipped.
func (s *Service) IndexAppt(ctx context.Context, a *appt.Appt) error {
	if s.appts == nil {
		return fmt.Errorf("appt writes: %w", domain.ErrNotImplemented)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}

	orgs, err := s.attendeeOrgs(ctx, a)
	if err != nil {
		return fmt.Errorf("orgs for appt %s: %w", a.ID, err)
	}

	rec := appt.NewIndexRecord(a, orgs)
	if err := s.appts.Put(ctx, &rec); err != nil {
		return fmt.Errorf("put appt %s: %w", a.ID, err)
	}
	return nil
}

// DeleteAppt removes an appointment's index record.
func (s *Service) DeleteAppt(ctx context.Context, id string) error {
	if s.appts == nil {
		return fmt.Errorf("appt writes: %w", domain.ErrNotImplemented)
	}
	if id == "" {
		return fmt.Errorf("%w: appt id is required", domain.ErrInvalidRecord)
	}
	if err := s.appts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appt %s: %w", id, err)
	}
	return nil
}

// attendeeOrgs looks attendees up concurrently and returns the union of
// their orgs in attendee order.
func (s *Service) attendeeOrgs(ctx context.Context, a *appt.Appt) ([]string, error) {
	ids := a.AttendeeIDs()
	perAttendee := make([][]string, len(ids))

	var mu sync.Mutex
	var missing []string

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := s.repo.Get(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				mu.Lock()
				missing = append(missing, id)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			perAttendee[i] = rec.Orgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		logger.FromContext(ctx).Warn("appt attendees missing from user index",
			zap.String("appt", a.ID),
			zap.Strings("attendees", missing),
		)
	}

	orgs := []string{}
	seen := make(map[string]struct{})
	for _, list := range perAttendee {
		for _, o := range list {
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			orgs = append(orgs, o)
		}
	}
	return orgs, nil
}
