package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tutorbook/tutorbook/internal/domain"
	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
	"github.com/tutorbook/tutorbook/internal/domain/user"
	healthuc "github.com/tutorbook/tutorbook/internal/usecase/health"
)

// --- Mocks ---

type mockSearcher struct {
	listFn func(ctx context.Context, q *query.Query, token string) ([]user.Record, error)
}

func (m *mockSearcher) ListUsers(ctx context.Context, q *query.Query, token string) ([]user.Record, error) {
	return m.listFn(ctx, q, token)
}

type mockIndexer struct {
	getFn     func(ctx context.Context, id string) (user.User, error)
	indexFn   func(ctx context.Context, u *user.User) error
	deleteFn  func(ctx context.Context, id string) error
	putOrgFn  func(ctx context.Context, o *org.Org) error
	apptFn    func(ctx context.Context, a *appt.Appt) error
	delApptFn func(ctx context.Context, id string) error
}

func (m *mockIndexer) GetUser(ctx context.Context, id string) (user.User, error) {
	return m.getFn(ctx, id)
}

func (m *mockIndexer) IndexUser(ctx context.Context, u *user.User) error { return m.indexFn(ctx, u) }

func (m *mockIndexer) DeleteUser(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }

func (m *mockIndexer) PutOrg(ctx context.Context, o *org.Org) error { return m.putOrgFn(ctx, o) }

func (m *mockIndexer) IndexAppt(ctx context.Context, a *appt.Appt) error { return m.apptFn(ctx, a) }

func (m *mockIndexer) DeleteAppt(ctx context.Context, id string) error { return m.delApptFn(ctx, id) }

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- Helpers ---

func newRouter(s *Server, apiKeys ...string) http.Handler {
	r := chi.NewRouter()
	s.Routes(r, apiKeys)
	return r
}

func serve(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

// --- ListUsers ---

func TestListUsers_OK(t *testing.T) {
	var gotToken string
	var gotQuery *query.Query
	searcher := &mockSearcher{listFn: func(_ context.Context, q *query.Query, token string) ([]user.Record, error) {
		gotToken, gotQuery = token, q
		return []user.Record{
			user.FullRecord{User: user.User{ID: "u1", Name: "Julia Ramos", Email: "jr@example.com", Visible: true}},
			user.TruncatedRecord{ID: "u2", Name: "Nicholas C."},
		}, nil
	}}
	h := newRouter(NewServer(searcher, nil, nil, PagingConfig{DefaultHitsPerPage: 20}, zap.NewNop()))

	rr := serve(h, http.MethodGet, "/api/users?aspect=tutoring&langs=en", "",
		map[string]string{"Authorization": "Bearer id-token"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if gotToken != "id-token" {
		t.Errorf("token = %q", gotToken)
	}
	if gotQuery.Aspect() != user.Tutoring || len(gotQuery.Langs()) != 1 {
		t.Errorf("query not parsed: %+v", gotQuery)
	}

	var body []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("records = %d", len(body))
	}
	if body[0]["email"] != "jr@example.com" {
		t.Errorf("full record must carry email: %v", body[0])
	}
	if _, ok := body[1]["email"]; ok {
		t.Errorf("truncated record must not carry email: %v", body[1])
	}
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	searcher := &mockSearcher{listFn: func(context.Context, *query.Query, string) ([]user.Record, error) {
		return []user.Record{}, nil
	}}
	h := newRouter(NewServer(searcher, nil, nil, PagingConfig{}, zap.NewNop()))

	rr := serve(h, http.MethodGet, "/api/users", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestListUsers_BadParams(t *testing.T) {
	searcher := &mockSearcher{listFn: func(context.Context, *query.Query, string) ([]user.Record, error) {
		t.Fatal("search must not run on bad params")
		return nil, nil
	}}
	h := newRouter(NewServer(searcher, nil, nil, PagingConfig{}, zap.NewNop()))

	tests := []struct {
		target string
		code   ErrorCode
	}{
		{"/api/users?visible=maybe", ErrorCodeBadRequest},
		{"/api/users?aspect=cooking", ErrorCodeValidationFailed},
		{"/api/users?availability=%5B%7B%22from%22%3A2%2C%22to%22%3A1%7D%5D", ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := serve(h, http.MethodGet, tt.target, "", nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestListUsers_InternalError(t *testing.T) {
	searcher := &mockSearcher{listFn: func(context.Context, *query.Query, string) ([]user.Record, error) {
		return nil, errors.New("secret backend detail")
	}}
	h := newRouter(NewServer(searcher, nil, nil, PagingConfig{}, zap.NewNop()))

	rr := serve(h, http.MethodGet, "/api/users", "", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != ErrorCodeInternalError || strings.Contains(e.Message, "secret") {
		t.Errorf("error leaked internals: %+v", e)
	}
}

// --- Index routes ---

func TestIndexUser(t *testing.T) {
	var got *user.User
	idx := &mockIndexer{indexFn: func(_ context.Context, u *user.User) error {
		got = u
		return nil
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()), "admin")
	auth := map[string]string{"Authorization": "Bearer admin"}

	rr := serve(h, http.MethodPut, "/api/index/users/u1", `{"name":"Julia Ramos","visible":true}`, auth)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got.ID != "u1" || got.Name != "Julia Ramos" || !got.Visible {
		t.Errorf("user = %+v", got)
	}

	rr = serve(h, http.MethodPut, "/api/index/users/u1", `{"id":"u2"}`, auth)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("id mismatch: status = %d", rr.Code)
	}

	rr = serve(h, http.MethodPut, "/api/index/users/u1", `{not json`, auth)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d", rr.Code)
	}
}

func TestGetUser(t *testing.T) {
	idx := &mockIndexer{getFn: func(_ context.Context, id string) (user.User, error) {
		if id != "u1" {
			return user.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return user.User{ID: "u1", Name: "Julia Ramos", Email: "julia@example.com"}, nil
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()), "admin")
	auth := map[string]string{"Authorization": "Bearer admin"}

	rr := serve(h, http.MethodGet, "/api/index/users/u1", "", auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got user.User
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Email != "julia@example.com" {
		t.Errorf("user = %+v", got)
	}

	rr = serve(h, http.MethodGet, "/api/index/users/u2", "", auth)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeNotFound {
		t.Errorf("code = %s", e.Code)
	}

	rr = serve(h, http.MethodGet, "/api/index/users/u1", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", rr.Code)
	}
}

func TestIndexRoutes_RequireAPIKey(t *testing.T) {
	idx := &mockIndexer{deleteFn: func(context.Context, string) error {
		t.Fatal("unauthenticated delete reached the indexer")
		return nil
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()), "admin")

	rr := serve(h, http.MethodDelete, "/api/index/users/u1", "", map[string]string{"Authorization": "Bearer id-token"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	var deleted string
	idx := &mockIndexer{deleteFn: func(_ context.Context, id string) error {
		deleted = id
		return nil
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()))

	rr := serve(h, http.MethodDelete, "/api/index/users/u1", "", nil)
	if rr.Code != http.StatusNoContent || deleted != "u1" {
		t.Errorf("status = %d, deleted = %q", rr.Code, deleted)
	}
}

func TestIndexErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"invalid record", domain.ErrInvalidRecord, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited},
		{"read-only org backend", domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &mockIndexer{putOrgFn: func(context.Context, *org.Org) error { return tt.err }}
			h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()))

			rr := serve(h, http.MethodPut, "/api/index/orgs/gunn", `{"name":"Gunn","members":["u1"]}`, nil)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			hc := &mockHealth{report: healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{"index": healthuc.CheckOK},
			}}
			h := newRouter(NewServer(nil, nil, hc, PagingConfig{}, zap.NewNop()))

			rr := serve(h, http.MethodGet, "/health", "", nil)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			var body HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != string(tt.status) || body.Checks["index"] != "ok" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestIndexAppt(t *testing.T) {
	var got *appt.Appt
	idx := &mockIndexer{apptFn: func(_ context.Context, a *appt.Appt) error {
		got = a
		return nil
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()), "admin")
	auth := map[string]string{"Authorization": "Bearer admin"}

	body := `{"creator":{"id":"u1","handle":"ada"},"attendees":[{"id":"u2","handle":"grace"}]}`
	rr := serve(h, http.MethodPut, "/api/index/appts/a1", body, auth)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got.ID != "a1" || len(got.Attendees) != 1 || got.Creator.Handle != "ada" {
		t.Errorf("appt = %+v", got)
	}

	rr = serve(h, http.MethodPut, "/api/index/appts/a1", `{"id":"a2"}`, auth)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("mismatched id: status = %d, want 400", rr.Code)
	}

	rr = serve(h, http.MethodPut, "/api/index/appts/a1", body, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", rr.Code)
	}
}

func TestDeleteAppt(t *testing.T) {
	var deleted string
	idx := &mockIndexer{delApptFn: func(_ context.Context, id string) error {
		deleted = id
		return nil
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()))

	rr := serve(h, http.MethodDelete, "/api/index/appts/a1", "", nil)
	if rr.Code != http.StatusNoContent || deleted != "a1" {
		t.Errorf("status = %d, deleted = %q", rr.Code, deleted)
	}
}

func TestIndexAppt_NotEnabled(t *testing.T) {
	idx := &mockIndexer{apptFn: func(context.Context, *appt.Appt) error {
		return fmt.Errorf("appt writes: %w", domain.ErrNotImplemented)
	}}
	h := newRouter(NewServer(nil, idx, nil, PagingConfig{}, zap.NewNop()))

	rr := serve(h, http.MethodPut, "/api/index/appts/a1", `{}`, nil)
	if rr.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rr.Code)
	}
}
