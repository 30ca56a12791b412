package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates searches work but callers may be treated as anonymous.
	Degraded Status = "degraded"
	// Unhealthy indicates the search index is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index       Pinger
	memberships Pinger
}

// New creates a Service. memberships can be nil when the membership backend
// has no cheap probe.
func New(index, memberships Pinger) *Service {
	return &Service{index: index, memberships: memberships}
}

// Check pings the search index and, if configured, the membership store.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"index": probe(ctx, s.index)}
	if s.memberships != nil {
		checks["memberships"] = probe(ctx, s.memberships)
	}

	status := Healthy
	switch {
	case checks["index"] == CheckError:
		status = Unhealthy
	case checks["memberships"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func probe(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
