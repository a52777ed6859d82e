package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for reconcile-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Matching engine configuration
	Matcher MatcherConfig `yaml:"matcher"`
}

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	// Enabled controls whether API keys are required on data endpoints.
	// Set to false for local development.
	Enabled bool `yaml:"enabled" env:"AUTH_ENABLED" env-default:"true"`

	// APIKeysStr is a comma-separated list of caller=key pairs.
	// Format: "caller1=key1,caller2=key2". Secret - not in YAML.
	APIKeysStr string `yaml:"-" env:"API_KEYS"`

	// APIKeys is the parsed map from APIKeysStr (not from config file).
	APIKeys map[string]string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host            string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User            string `yaml:"user" env:"PGUSER" env-default:"reconcile"`
	Password        string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database        string `yaml:"database" env:"PGDATABASE" env-default:"reconcile_engine"`
	MaxConnections  int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	ConnLifetimeMin int    `yaml:"conn_lifetime_min" env:"PGCONN_LIFETIME_MIN" env-default:"60"`
	ConnIdleMin     int    `yaml:"conn_idle_min" env:"PGCONN_IDLE_MIN" env-default:"30"`
	SSLMode         string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath  string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// MatcherConfig holds the matching and ranking engine settings.
// Threshold and Margin together form the disambiguation policy: the top
// candidate is flagged a match only if its score clears Threshold AND leads
// the runner-up by at least Margin.
type MatcherConfig struct {
	Threshold      float64 `yaml:"threshold" env:"MATCH_THRESHOLD" env-default:"0.8"`
	Margin         float64 `yaml:"margin" env:"MATCH_MARGIN" env-default:"0.05"`
	DefaultLimit   int     `yaml:"default_limit" env:"MATCH_DEFAULT_LIMIT" env-default:"5"`
	MaxLimit       int     `yaml:"max_limit" env:"MATCH_MAX_LIMIT" env-default:"50"`
	MaxConcurrent  int     `yaml:"max_concurrent" env:"MATCH_MAX_CONCURRENT" env-default:"8"`
	BatchTimeoutMS int     `yaml:"batch_timeout_ms" env:"MATCH_BATCH_TIMEOUT_MS" env-default:"10000"`
	SnapshotTTLMS  int     `yaml:"snapshot_ttl_ms" env:"MATCH_SNAPSHOT_TTL_MS" env-default:"30000"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// If config.yaml does not exist, configuration comes from environment variables
// alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Auth.APIKeys = parseAPIKeys(cfg.Auth.APIKeysStr)

	if err := cfg.Matcher.validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher configuration: %w", err)
	}

	return cfg, nil
}

func (c *MatcherConfig) validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %v", c.Threshold)
	}
	if c.Margin < 0 || c.Margin > 1 {
		return fmt.Errorf("margin must be in [0,1], got %v", c.Margin)
	}
	if c.DefaultLimit < 1 || c.MaxLimit < 1 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("limits must satisfy 1 <= default_limit <= max_limit, got %d/%d", c.DefaultLimit, c.MaxLimit)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be >= 1, got %d", c.MaxConcurrent)
	}
	return nil
}

// parseAPIKeys parses the API keys string into a caller->key map.
// Format: "caller1=key1,caller2=key2"
func parseAPIKeys(value string) map[string]string {
	keys := make(map[string]string)
	if value == "" {
		return keys
	}

	pairs := strings.Split(value, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, "=")
		if len(parts) == 2 {
			keys[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return keys
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
