package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the tutorbook search API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Search     SearchConfig     `yaml:"search"`
	Database   DatabaseConfig   `yaml:"database"`
	Identity   IdentityConfig   `yaml:"identity"`
	Membership MembershipConfig `yaml:"membership"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API keys for the index write routes.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig lists the front-end origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchConfig selects the search index backend and tunes the fan-out.
type SearchConfig struct {
	Driver               string        `yaml:"driver"` // algolia, redis (default: redis)
	Index                string        `yaml:"index"`
	ApptIndex            string        `yaml:"appt_index"` // empty disables appointment indexing
	HitsPerPage          int           `yaml:"hits_per_page"`
	MaxHitsPerPage       int           `yaml:"max_hits_per_page"`
	MaxConcurrentQueries int           `yaml:"max_concurrent_queries"` // 0 = unbounded
	QueryTimeoutMs       int           `yaml:"query_timeout_ms"`       // 0 = no timeout
	EnsureSchema         bool          `yaml:"ensure_schema"`
	Algolia              AlgoliaConfig `yaml:"algolia"`
}

// AlgoliaConfig holds hosted index credentials and client-side quota.
type AlgoliaConfig struct {
	AppID             string  `yaml:"app_id"`
	APIKey            string  `yaml:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `yaml:"burst"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IdentityConfig selects how caller tokens are verified.
type IdentityConfig struct {
	Driver          string            `yaml:"driver"` // firebase, static (default: static)
	ProjectID       string            `yaml:"project_id"`
	CredentialsFile string            `yaml:"credentials_file"`
	CheckRevoked    bool              `yaml:"check_revoked"`
	StaticTokens    map[string]string `yaml:"static_tokens"` // token -> uid
}

// MembershipConfig selects where org member lists are read from.
type MembershipConfig struct {
	Driver string `yaml:"driver"` // firestore, redis (default: redis)
	Index  string `yaml:"index"`  // firestore collection or redis keyspace name
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, applies defaults and
// validates the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.Driver == "" {
		c.Search.Driver = "redis"
	}
	if c.Search.Index == "" {
		c.Search.Index = "users"
	}
	if c.Search.HitsPerPage <= 0 {
		c.Search.HitsPerPage = 20
	}
	if c.Search.MaxHitsPerPage <= 0 {
		c.Search.MaxHitsPerPage = 100
	}
	if c.Search.Algolia.RequestsPerSecond > 0 && c.Search.Algolia.Burst <= 0 {
		c.Search.Algolia.Burst = 1
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Identity.Driver == "" {
		c.Identity.Driver = "static"
	}
	if c.Membership.Driver == "" {
		c.Membership.Driver = "redis"
	}
	if c.Membership.Index == "" {
		c.Membership.Index = "orgs"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "tutorbook:"
	}
}

// UsesRedis reports whether any component needs the Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Search.Driver == "redis" || c.Membership.Driver == "redis"
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.QueryTimeoutMs < 0 {
		return fmt.Errorf("search.query_timeout_ms must not be negative, got %d", c.Search.QueryTimeoutMs)
	}
	if c.Search.MaxConcurrentQueries < 0 {
		return fmt.Errorf("search.max_concurrent_queries must not be negative, got %d", c.Search.MaxConcurrentQueries)
	}
	if c.Search.HitsPerPage > c.Search.MaxHitsPerPage {
		return fmt.Errorf("search.hits_per_page (%d) exceeds search.max_hits_per_page (%d)",
			c.Search.HitsPerPage, c.Search.MaxHitsPerPage)
	}

	switch c.Search.Driver {
	case "redis":
	case "algolia":
		if c.Search.Algolia.AppID == "" || c.Search.Algolia.APIKey == "" {
			return fmt.Errorf("search.algolia.app_id and search.algolia.api_key are required for the algolia driver")
		}
	default:
		return fmt.Errorf("search.driver must be \"algolia\" or \"redis\", got %q", c.Search.Driver)
	}

	switch c.Identity.Driver {
	case "static":
	case "firebase":
		if c.Identity.ProjectID == "" {
			return fmt.Errorf("identity.project_id is required for the firebase driver")
		}
	default:
		return fmt.Errorf("identity.driver must be \"firebase\" or \"static\", got %q", c.Identity.Driver)
	}

	switch c.Membership.Driver {
	case "redis":
	case "firestore":
		if c.Identity.Driver != "firebase" {
			return fmt.Errorf("membership.driver firestore requires identity.driver firebase")
		}
	default:
		return fmt.Errorf("membership.driver must be \"firestore\" or \"redis\", got %q", c.Membership.Driver)
	}

	if c.UsesRedis() && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
