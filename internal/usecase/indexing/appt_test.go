package indexing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tutorbook/tutorbook/internal/domain"
	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/domain/user"
	"github.com/tutorbook/tutorbook/internal/logger"
)

type mockAppts struct {
	putFn    func(ctx context.Context, rec *appt.IndexRecord) error
	deleteFn func(ctx context.Context, id string) error
	schemaFn func(ctx context.Context) error
}

func (m *mockAppts) Put(ctx context.Context, rec *appt.IndexRecord) error {
	return m.putFn(ctx, rec)
}

func (m *mockAppts) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockAppts) EnsureSchema(ctx context.Context) error {
	return m.schemaFn(ctx)
}

func usersWithOrgs(orgs map[string][]string) *mockRepo {
	return &mockRepo{getFn: func(_ context.Context, id string) (user.IndexRecord, error) {
		o, ok := orgs[id]
		if !ok {
			return user.IndexRecord{}, domain.ErrNotFound
		}
		return user.IndexRecord{ObjectID: id, Orgs: o}, nil
	}}
}

func sampleAppt() *appt.Appt {
	return &appt.Appt{
		ID:      "a1",
		Creator: appt.Attendee{ID: "u1", Handle: "ada"},
		Attendees: []appt.Attendee{
			{ID: "u1", Handle: "ada"},
			{ID: "u2", Handle: "grace"},
			{ID: "ghost", Handle: "ghost"},
		},
	}
}

func TestIndexAppt_CollectsAttendeeOrgs(t *testing.T) {
	var got *appt.IndexRecord
	svc := New(usersWithOrgs(map[string][]string{
		"u1": {"gunn", "paly"},
		"u2": {"paly", "tutorbook"},
	}), nil).WithAppts(&mockAppts{putFn: func(_ context.Context, rec *appt.IndexRecord) error {
		got = rec
		return nil
	}})

	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	if err := svc.IndexAppt(ctx, sampleAppt()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Join(got.Orgs, ",") != "gunn,paly,tutorbook" {
		t.Errorf("orgs = %v", got.Orgs)
	}
	if strings.Join(got.Handles, ",") != "ada,ada,grace,ghost" {
		t.Errorf("handles = %v", got.Handles)
	}
	if logs.FilterMessage("appt attendees missing from user index").Len() != 1 {
		t.Errorf("expected one warning for the missing attendee, got %v", logs.All())
	}
}

func TestIndexAppt_LookupError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := New(&mockRepo{getFn: func(context.Context, string) (user.IndexRecord, error) {
		return user.IndexRecord{}, boom
	}}, nil).WithAppts(&mockAppts{putFn: func(context.Context, *appt.IndexRecord) error {
		t.Fatal("record must not be stored when a lookup fails")
		return nil
	}})

	if err := svc.IndexAppt(context.Background(), sampleAppt()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped lookup error, got %v", err)
	}
}

func TestIndexAppt_Invalid(t *testing.T) {
	svc := New(&mockRepo{}, nil).WithAppts(&mockAppts{})

	if err := svc.IndexAppt(context.Background(), &appt.Appt{}); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestApptWrites_NotEnabled(t *testing.T) {
	svc := New(&mockRepo{}, nil)

	if err := svc.IndexAppt(context.Background(), sampleAppt()); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("IndexAppt: expected ErrNotImplemented, got %v", err)
	}
	if err := svc.DeleteAppt(context.Background(), "a1"); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("DeleteAppt: expected ErrNotImplemented, got %v", err)
	}
}

func TestDeleteAppt(t *testing.T) {
	var deleted string
	svc := New(&mockRepo{}, nil).WithAppts(&mockAppts{deleteFn: func(_ context.Context, id string) error {
		deleted = id
		return nil
	}})

	if err := svc.DeleteAppt(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "a1" {
		t.Errorf("deleted = %q", deleted)
	}
	if err := svc.DeleteAppt(context.Background(), ""); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord for empty id, got %v", err)
	}
}

func TestEnsureSchema_IncludesAppts(t *testing.T) {
	boom := errors.New("forbidden")
	svc := New(&mockRepo{schemaFn: func(context.Context) error { return nil }}, nil).
		WithAppts(&mockAppts{schemaFn: func(context.Context) error { return boom }})

	if err := svc.EnsureSchema(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped appt schema error, got %v", err)
	}
}
