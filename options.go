package tutorbook

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	keyPrefix string
	userIndex string
	orgIndex  string
	apptIndex string

	tokens map[string]string

	maxConcurrent int
	queryTimeout  time.Duration
	ensureSchema  bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		keyPrefix:     "tutorbook:",
		userIndex:     "users",
		orgIndex:      "orgs",
		apptIndex:     "appts",
		maxConcurrent: 8,
	}
}

// WithRedis configures the Redis instance holding users and orgs.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the key prefix shared by every stored document.
// Default: "tutorbook:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithIndexes names the user and org keyspaces. Defaults: "users", "orgs".
func WithIndexes(users, orgs string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userIndex = users
		c.orgIndex = orgs
	})
}

// WithApptIndex names the appointment keyspace. Default: "appts".
func WithApptIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apptIndex = name
	})
}

// WithStaticTokens maps bearer tokens to user IDs for ListUsers callers.
// Without it every caller is anonymous.
func WithStaticTokens(tokens map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tokens = tokens
	})
}

// WithMaxConcurrentQueries bounds the per-search sub-query fan-out.
// Default: 8.
func WithMaxConcurrentQueries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConcurrent = n
	})
}

// WithQueryTimeout bounds each sub-query. Zero disables the timeout (default).
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithEnsureSchema creates the user, appointment and org indexes during New.
func WithEnsureSchema() Option {
	return optionFunc(func(c *clientConfig) {
		c.ensureSchema = true
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
