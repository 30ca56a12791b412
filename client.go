package tutorbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutorbook/tutorbook/internal/db"
	dbRedis "github.com/tutorbook/tutorbook/internal/db/redis"
	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
	"github.com/tutorbook/tutorbook/internal/domain/user"
	apptrepo "github.com/tutorbook/tutorbook/internal/repository/appt"
	membershiprepo "github.com/tutorbook/tutorbook/internal/repository/membership"
	searchrepo "github.com/tutorbook/tutorbook/internal/repository/search"
	userrepo "github.com/tutorbook/tutorbook/internal/repository/user"
	healthuc "github.com/tutorbook/tutorbook/internal/usecase/health"
	identityuc "github.com/tutorbook/tutorbook/internal/usecase/identity"
	indexinguc "github.com/tutorbook/tutorbook/internal/usecase/indexing"
	searchuc "github.com/tutorbook/tutorbook/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can swap the use cases.
type searchUseCase interface {
	ListUsers(ctx context.Context, q *query.Query, token string) ([]user.Record, error)
}

type indexingUseCase interface {
	GetUser(ctx context.Context, id string) (user.User, error)
	IndexUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, id string) error
	PutOrg(ctx context.Context, o *org.Org) error
	IndexAppt(ctx context.Context, a *appt.Appt) error
	DeleteAppt(ctx context.Context, id string) error
	EnsureSchema(ctx context.Context) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// orgSchema creates the org membership index.
type orgSchema interface {
	EnsureSchema(ctx context.Context) error
}

// Client is the embedded tutorbook entry point.
type Client struct {
	store       *dbRedis.Store
	searchSvc   searchUseCase
	indexingSvc indexingUseCase
	healthSvc   healthUseCase
	orgs        orgSchema
	obs         *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the readiness check and schema setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("tutorbook: redis address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("tutorbook: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("tutorbook: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := wireClient(store, cfg, obs)
	if cfg.ensureSchema {
		if err := c.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	users := db.Keyspace{Prefix: cfg.keyPrefix, Name: cfg.userIndex}
	userRepo := userrepo.New(store, users)
	orgs := membershiprepo.New(store, db.Keyspace{Prefix: cfg.keyPrefix, Name: cfg.orgIndex})
	appts := apptrepo.New(store, db.Keyspace{Prefix: cfg.keyPrefix, Name: cfg.apptIndex})

	executor := searchuc.NewExecutor(
		searchrepo.New(store, users.Index(), users.DocPrefix()),
		searchuc.ExecutorConfig{
			Backend:       "redis",
			MaxConcurrent: cfg.maxConcurrent,
			QueryTimeout:  cfg.queryTimeout,
		},
	)
	resolver := identityuc.NewResolver(identityuc.NewStaticVerifier(cfg.tokens), orgs)

	return &Client{
		store:       store,
		searchSvc:   searchuc.New(executor, resolver),
		indexingSvc: indexinguc.New(userRepo, orgs).WithAppts(appts),
		healthSvc:   healthuc.New(userRepo, orgs),
		orgs:        orgs,
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureSchema creates the user, appointment and org indexes if they are missing.
func (c *Client) EnsureSchema(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_schema", start, err) }()

	if err = c.indexingSvc.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure index schema: %w", err)
	}
	if err = c.orgs.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure org schema: %w", err)
	}
	return nil
}

// ListUsers searches users matching p and projects each result for the
// caller identified by token. An empty token searches anonymously.
// Sub-query failures shrink the result instead of failing the call.
func (c *Client) ListUsers(ctx context.Context, p SearchParams, token string) (_ []Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_users", start, err) }()

	q, err := query.New(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return c.searchSvc.ListUsers(ctx, &q, token)
}

// IndexUser stores or replaces a user in the search index.
func (c *Client) IndexUser(ctx context.Context, u *User) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index_user", start, err) }()

	return c.indexingSvc.IndexUser(ctx, u)
}

// GetUser returns a stored user in full, without projection.
// A missing user yields an error matching ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (_ User, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_user", start, err) }()

	return c.indexingSvc.GetUser(ctx, id)
}

// DeleteUser removes a user from the search index. Missing users are not an error.
func (c *Client) DeleteUser(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_user", start, err) }()

	return c.indexingSvc.DeleteUser(ctx, id)
}

// PutOrg stores or replaces an organization and its member list.
func (c *Client) PutOrg(ctx context.Context, o *Org) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("put_org", start, err) }()

	return c.indexingSvc.PutOrg(ctx, o)
}

// IndexAppt stores or replaces an appointment. The stored record lists the
// orgs of its attendees so dashboards can filter appointments by org.
func (c *Client) IndexAppt(ctx context.Context, a *Appt) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index_appt", start, err) }()

	return c.indexingSvc.IndexAppt(ctx, a)
}

// DeleteAppt removes an appointment from the appointment index.
func (c *Client) DeleteAppt(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_appt", start, err) }()

	return c.indexingSvc.DeleteAppt(ctx, id)
}
