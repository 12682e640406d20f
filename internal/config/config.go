// Package config loads the runtime configuration shared by the products and
// inventory services from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
)

// Storage backends understood by the services.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DefaultAPIKeyHeader is the header carrying the shared service credential.
const DefaultAPIKeyHeader = "SERVICE_API_KEY"

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

// URL returns the pgx connection string.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// DSN returns the key/value connection string used by database/sql with lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

// RemoteConfig describes the partner service and how calls to it are retried.
type RemoteConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Config holds everything a service process needs at startup.
type Config struct {
	ServiceName     string
	ServiceVersion  string
	Port            string
	APIKey          string
	APIKeyHeader    string
	Storage         string
	Database        DatabaseConfig
	Remote          RemoteConfig
	OTLPEndpoint    string
	ShutdownTimeout time.Duration
}

// TelemetryEnabled reports whether OTLP exporters should be started.
func (c *Config) TelemetryEnabled() bool {
	return c.OTLPEndpoint != ""
}

// Defaults are the per-service fallbacks applied when a variable is unset.
type Defaults struct {
	ServiceName  string
	Port         string
	DatabaseName string
	// RemoteURLEnv names the variable holding the partner service base URL.
	RemoteURLEnv string
	RemoteURL    string
}

// Load collects configuration from the environment and validates it.
func Load(d Defaults) (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		ServiceName:    getEnv("SERVICE_NAME", d.ServiceName),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		Port:           getEnv("PORT", d.Port),
		APIKey:         os.Getenv("SERVICE_API_KEY"),
		APIKeyHeader:   getEnv("API_KEY_HEADER", DefaultAPIKeyHeader),
		Storage:        getEnv("STORAGE", StoragePostgres),
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     env.int("DATABASE_PORT", 5432),
			User:     getEnv("DATABASE_USER", "root"),
			Password: getEnv("DATABASE_PASSWORD", "pass"),
			Name:     getEnv("DATABASE_NAME", d.DatabaseName),
			MaxConns: env.int32("DATABASE_MAX_CONNS", 10),
		},
		Remote: RemoteConfig{
			BaseURL:       getEnv(d.RemoteURLEnv, d.RemoteURL),
			Timeout:       env.millis("REMOTE_TIMEOUT_MS", 5000),
			RetryAttempts: env.int("REMOTE_RETRY_ATTEMPTS", 2),
			RetryDelay:    env.millis("REMOTE_RETRY_DELAY_MS", 1000),
		},
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ShutdownTimeout: env.millis("SHUTDOWN_TIMEOUT_MS", 15000),
	}
	if env.err != nil {
		return nil, errors.Trace(env.err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Validate checks the invariants the services rely on.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.NotValidf("empty SERVICE_API_KEY")
	}
	if c.APIKeyHeader == "" {
		return errors.NotValidf("empty API_KEY_HEADER")
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return errors.NotValidf("STORAGE %q", c.Storage)
	}
	if c.Remote.BaseURL == "" {
		return errors.NotValidf("empty partner service URL")
	}
	if c.Remote.RetryAttempts < 1 {
		return errors.NotValidf("REMOTE_RETRY_ATTEMPTS %d", c.Remote.RetryAttempts)
	}
	if c.Remote.RetryDelay <= 0 {
		return errors.NotValidf("REMOTE_RETRY_DELAY_MS %s", c.Remote.RetryDelay)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses numeric variables and keeps the first malformed one.
type envReader struct {
	err error
}

func (r *envReader) parse(key string, defaultValue int, bitSize int) int {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, bitSize)
	if err != nil {
		if r.err == nil {
			r.err = errors.NotValidf("%s %q", key, v)
		}
		return defaultValue
	}
	return int(n)
}

func (r *envReader) int(key string, defaultValue int) int {
	return r.parse(key, defaultValue, 0)
}

func (r *envReader) int32(key string, defaultValue int32) int32 {
	return int32(r.parse(key, int(defaultValue), 32))
}

func (r *envReader) millis(key string, defaultMs int) time.Duration {
	return time.Duration(r.parse(key, defaultMs, 32)) * time.Millisecond
}
