// Package config loads application settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable that points at a YAML config file.
const FileEnv = "TASK_TRACKER_CONFIG"

// Config is the full application configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// HTTPConfig configures the Fiber server.
type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	AllowedOrigins string `yaml:"allowed_origins"`
	// LoginRateLimit is the number of login/register attempts allowed per IP per minute.
	LoginRateLimit int `yaml:"login_rate_limit"`
}

// DatabaseConfig configures the SQLite store shared by the auth and task modules.
type DatabaseConfig struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

// DSN returns the SQLite data source name. File databases get a busy
// timeout because the auth and task modules hold separate connection pools.
func (d DatabaseConfig) DSN() string {
	if d.Path == "" || strings.HasPrefix(d.Path, ":memory:") || strings.Contains(d.Path, "?") {
		return d.Path
	}
	return d.Path + "?_busy_timeout=5000"
}

// AuthConfig configures credential hashing and API tokens.
type AuthConfig struct {
	JWTSecret            string        `yaml:"jwt_secret"`
	JWTIssuer            string        `yaml:"jwt_issuer"`
	AccessTokenDuration  time.Duration `yaml:"access_token_duration"`
	RefreshTokenDuration time.Duration `yaml:"refresh_token_duration"`
	BcryptCost           int           `yaml:"bcrypt_cost"`
}

// SessionConfig configures the browser session cookie.
type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
	TTL          time.Duration `yaml:"ttl"`
}

// RedisConfig configures the optional shared storage for sessions and rate limits.
// An empty Addr keeps everything in process memory.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures framework and access logging.
type LogConfig struct {
	Level         string `yaml:"level"`
	AccessLogPath string `yaml:"access_log_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":3000",
			AllowedOrigins: "http://localhost:3000",
			LoginRateLimit: 10,
		},
		Database: DatabaseConfig{
			Path: "task_tracker.db",
		},
		Auth: AuthConfig{
			JWTSecret:            "your-secret-key-change-in-production",
			JWTIssuer:            "task-tracker",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			BcryptCost:           12,
		},
		Session: SessionConfig{
			CookieName: "task_tracker_session",
			TTL:        24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// TASK_TRACKER_CONFIG (if any), then environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = v
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid LOGIN_RATE_LIMIT %q", v)
		}
		c.HTTP.LoginRateLimit = n
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if os.Getenv("DB_DEBUG") == "true" {
		c.Database.Debug = true
	}

	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		c.Auth.JWTIssuer = v
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		c.Auth.BcryptCost = n
	}

	if os.Getenv("SESSION_COOKIE_SECURE") == "true" {
		c.Session.CookieSecure = true
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		c.Session.TTL = d
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ACCESS_LOG_PATH"); v != "" {
		c.Log.AccessLogPath = v
	}

	return nil
}
