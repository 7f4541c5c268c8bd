// Package config provides centralized configuration for the dashboard and
// the trainerctl CLI. Settings come from environment variables (optionally
// seeded from a .env file) and are validated on startup.
package config

import (
	"strconv"
	"time"
)

// DefaultBackendURL is the public personal-trainer demo API.
const DefaultBackendURL = "https://customer-rest-service-frontend-personaltrainer.2.rahtiapp.fi/api"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Audit    AuditConfig
	Display  DisplayConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// BackendConfig points at the remote REST API.
type BackendConfig struct {
	// BaseURL is the API root; collection paths are appended to it.
	BaseURL string `env:"BACKEND_BASE_URL" envAlt:"API_BASE_URL" default:"https://customer-rest-service-frontend-personaltrainer.2.rahtiapp.fi/api"`

	// Timeout per request. 0 keeps the transport default (no app-level timeout).
	Timeout time.Duration `env:"BACKEND_TIMEOUT" default:"0s"`

	UserAgent string `env:"BACKEND_USER_AGENT" default:"trainer-dashboard"`
}

// DatabaseConfig holds the optional audit database settings.
// When URL is empty, audit entries are kept in memory.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"5"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// MutationLimit applies to POST routes (default: 30)
	MutationLimit int `env:"RATE_LIMIT_MUTATIONS" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards the JSON API and the reset endpoint.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`

	// CSRFKey signs form tokens; 32 bytes. When empty a random key is
	// generated at startup, so tokens do not survive a restart.
	CSRFKey string `env:"CSRF_KEY"`

	// CSRFTrustedOrigins lists extra hosts (host:port) allowed to post forms.
	CSRFTrustedOrigins []string `env:"CSRF_TRUSTED_ORIGINS"`

	// CSRFSecureCookie marks the token cookie Secure (enable behind TLS).
	CSRFSecureCookie bool `env:"CSRF_SECURE_COOKIE" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	RetentionDays  int           `env:"AUDIT_RETENTION_DAYS" default:"90"`
	CheckInterval  time.Duration `env:"AUDIT_CHECK_INTERVAL" default:"24h"`
	MemoryCapacity int           `env:"AUDIT_MEMORY_CAPACITY" default:"500"`
}

// DisplayConfig controls how dates are shown.
type DisplayConfig struct {
	Timezone string `env:"DISPLAY_TIMEZONE" default:"Europe/Helsinki"`
}

// Location loads the display time zone, falling back to UTC.
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
