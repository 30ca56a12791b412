package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := &mockPinger{err: errors.New("conn refused")}
	up := &mockPinger{}

	tests := []struct {
		name        string
		index       Pinger
		memberships Pinger
		status      Status
		checks      map[string]CheckResult
	}{
		{
			name: "all healthy", index: up, memberships: up, status: Healthy,
			checks: map[string]CheckResult{"index": CheckOK, "memberships": CheckOK},
		},
		{
			name: "index down", index: down, memberships: up, status: Unhealthy,
			checks: map[string]CheckResult{"index": CheckError, "memberships": CheckOK},
		},
		{
			name: "memberships down", index: up, memberships: down, status: Degraded,
			checks: map[string]CheckResult{"index": CheckOK, "memberships": CheckError},
		},
		{
			name: "both down", index: down, memberships: down, status: Unhealthy,
			checks: map[string]CheckResult{"index": CheckError, "memberships": CheckError},
		},
		{
			name: "no membership probe", index: up, status: Healthy,
			checks: map[string]CheckResult{"index": CheckOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.index, tt.memberships).Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("status = %q, want %q", r.Status, tt.status)
			}
			if len(r.Checks) != len(tt.checks) {
				t.Errorf("checks = %v, want %v", r.Checks, tt.checks)
			}
			for k, want := range tt.checks {
				if r.Checks[k] != want {
					t.Errorf("checks[%s] = %q, want %q", k, r.Checks[k], want)
				}
			}
		})
	}
}
