package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Put("/api/index/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"u1", "u2"} {
		req := httptest.NewRequest(http.MethodPut, "/api/index/users/"+id, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("PUT", "/api/index/users/{id}", "204"))
	if got < 2 {
		t.Errorf("expected both ids under one series, got %f", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/users", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		path   string
		status string
	}{
		{"/api/users", "200"},
		{"/boom", "500"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.status)); v < 1 {
				t.Errorf("expected requests_total{%s,%s} >= 1, got %f", tc.path, tc.status, v)
			}
		})
	}
}

func TestMiddleware_Unmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")); v < 1 {
		t.Errorf("expected unmatched 404 to be counted, got %f", v)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/", http.NoBody)); got != "unmatched" {
		t.Errorf("got %q", got)
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchQueriesTotal.WithLabelValues("redis", "ok").Inc()
	if v := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues("redis", "ok")); v < 1 {
		t.Errorf("search_queries_total = %f", v)
	}
}

func TestHandler_ServesRegistry(t *testing.T) {
	RegisterSearchMetrics()
	IdentityResolutionsTotal.WithLabelValues("anonymous").Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "tutorbook_identity_resolutions_total") {
		t.Error("expected identity metric in exposition")
	}
}
