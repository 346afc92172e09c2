package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SessionConfig holds everything the session resolver and its collaborators
// need: cache and store endpoints, issuance TTL, provider endpoints, and the
// functional-test fixture toggle.
type SessionConfig struct {
	RedisURL         string        `yaml:"redis_url"`
	PostgresURL      string        `yaml:"postgres_url"`
	PostgresMaxConns int           `yaml:"postgres_max_conns"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	GitHubAPIURL     string        `yaml:"github_api_url"`
	OIDCIssuerURL    string        `yaml:"oidc_issuer_url"`
	JobsrvAddr       string        `yaml:"jobsrv_addr"`

	// FixtureMode is set by the PRESENCE of DEPOT_FUNC_TEST; the value is
	// unused. It is read here, once, and passed into the resolver's
	// construction — never consulted again at request time.
	FixtureMode bool `yaml:"-"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load builds configuration from environment variables; an optional YAML
// file (named by DEPOT_CONFIG) overlays the result.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("DEPOT_HOST", "0.0.0.0"),
			Port:            getEnv("DEPOT_PORT", "9636"),
			ReadTimeout:     getEnvDuration("DEPOT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("DEPOT_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("DEPOT_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("DEPOT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			RedisURL:         getEnv("DEPOT_REDIS_URL", "redis://localhost:6379"),
			PostgresURL:      getEnv("DEPOT_POSTGRES_URL", "postgres://localhost/depot?sslmode=disable"),
			PostgresMaxConns: getEnvInt("DEPOT_POSTGRES_MAX_CONNS", 20),
			SessionTTL:       getEnvDuration("DEPOT_SESSION_TTL", 72*time.Hour),
			GitHubAPIURL:     getEnv("DEPOT_GITHUB_API_URL", ""),
			OIDCIssuerURL:    getEnv("DEPOT_OIDC_ISSUER_URL", ""),
			JobsrvAddr:       getEnv("DEPOT_JOBSRV_ADDR", ""),
		},
		Log: LogConfig{
			Level: getEnv("DEPOT_LOG_LEVEL", "info"),
		},
	}

	if path := os.Getenv("DEPOT_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	_, cfg.Session.FixtureMode = os.LookupEnv("DEPOT_FUNC_TEST")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays a YAML file onto cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be numeric, got %q", c.Server.Port)
	}
	if c.Session.RedisURL == "" {
		return fmt.Errorf("redis URL must not be empty")
	}
	if c.Session.PostgresURL == "" {
		return fmt.Errorf("postgres URL must not be empty")
	}
	if c.Session.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.Session.SessionTTL)
	}
	if c.Session.PostgresMaxConns <= 0 {
		return fmt.Errorf("postgres max conns must be positive, got %d", c.Session.PostgresMaxConns)
	}
	return nil
}

// getEnv returns an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
