// Package config handles runtime configuration: development defaults, an
// optional JSON/YAML config file, environment variables, and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"time"
)

var (
	// ErrMissingDatabaseURL is returned by Validate when no database
	// connection string was provided by any configuration source.
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

	// ErrMissingAuthSecret is returned by Validate when no signing secret
	// was provided by any configuration source.
	ErrMissingAuthSecret = errors.New("AUTH_SECRET is not set")
)

// Config holds runtime settings for the auth service.
//
// DatabaseURL and AuthSecret have no defaults on purpose: both are required
// and the process must fail at startup when they are absent.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	AuthSecret    string
	AuthURL       string
	PublicAuthURL string

	// TrustedOrigins is the list of origins allowed to make cross-origin
	// requests against the auth endpoints.
	TrustedOrigins []string

	SessionValidityDuration      time.Duration
	TokenValidityDuration        time.Duration
	VerificationValidityDuration time.Duration
	MinPasswordLength            int

	// Connection pool tuning. Zero values fall back to driver defaults.
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	DBQueryLog        bool

	// Avatar object storage (S3-compatible).
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with development defaults.
// NOTE: these values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.AuthURL = "http://localhost:8080"
	c.PublicAuthURL = "http://localhost:8080"
	c.TrustedOrigins = []string{"http://localhost:3000"}
	c.SessionValidityDuration = 7 * 24 * time.Hour
	c.TokenValidityDuration = 15 * time.Minute
	c.VerificationValidityDuration = 1 * time.Hour
	c.MinPasswordLength = 8
	c.DBMaxOpenConns = 100
	c.DBMaxIdleConns = 10
	c.DBConnMaxLifetime = time.Hour
	c.DBConnMaxIdleTime = 30 * time.Minute
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "avatars"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports whether the required settings are present. It is called
// once at startup; a non-nil result is fatal.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.AuthSecret == "" {
		return ErrMissingAuthSecret
	}
	return nil
}
