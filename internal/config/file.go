package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Rana-Faraz/authbase/internal/flagx"
	"github.com/Rana-Faraz/authbase/internal/timex"
)

// FileConfig is the DTO used to decode config files. Duration fields accept
// both "15m"-style strings and integer nanoseconds. Fields left out of the
// file keep their current (default) values.
type FileConfig struct {
	ListenAddr    string `json:"listen_addr" yaml:"listen_addr"`
	DatabaseURL   string `json:"database_url" yaml:"database_url"`
	AuthSecret    string `json:"auth_secret" yaml:"auth_secret"`
	AuthURL       string `json:"auth_url" yaml:"auth_url"`
	PublicAuthURL string `json:"public_auth_url" yaml:"public_auth_url"`

	TrustedOrigins []string `json:"trusted_origins" yaml:"trusted_origins"`

	SessionValidityDuration      timex.Duration `json:"session_validity_duration" yaml:"session_validity_duration"`
	TokenValidityDuration        timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	VerificationValidityDuration timex.Duration `json:"verification_validity_duration" yaml:"verification_validity_duration"`
	MinPasswordLength            int            `json:"min_password_length" yaml:"min_password_length"`

	DBMaxOpenConns    int            `json:"db_max_open_conns" yaml:"db_max_open_conns"`
	DBMaxIdleConns    int            `json:"db_max_idle_conns" yaml:"db_max_idle_conns"`
	DBConnMaxLifetime timex.Duration `json:"db_conn_max_lifetime" yaml:"db_conn_max_lifetime"`
	DBConnMaxIdleTime timex.Duration `json:"db_conn_max_idle_time" yaml:"db_conn_max_idle_time"`
	DBQueryLog        bool           `json:"db_query_log" yaml:"db_query_log"`

	S3AccessKey    string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile overlays values from the config file named by the -c/-config
// flag, if any. The decoder is chosen by file extension: .yaml/.yml use YAML,
// everything else is treated as JSON. An unreadable or malformed file panics:
// a config file that was explicitly pointed at must not be silently skipped.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, c)
	default:
		err = json.Unmarshal(raw, c)
	}
	if err != nil {
		panic(err)
	}

	applyFileConfig(config, c)
}

func applyFileConfig(config *Config, c *FileConfig) {
	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.DatabaseURL != "" {
		config.DatabaseURL = c.DatabaseURL
	}
	if c.AuthSecret != "" {
		config.AuthSecret = c.AuthSecret
	}
	if c.AuthURL != "" {
		config.AuthURL = c.AuthURL
	}
	if c.PublicAuthURL != "" {
		config.PublicAuthURL = c.PublicAuthURL
	}
	if len(c.TrustedOrigins) > 0 {
		config.TrustedOrigins = c.TrustedOrigins
	}
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.VerificationValidityDuration.Duration > 0 {
		config.VerificationValidityDuration = c.VerificationValidityDuration.Duration
	}
	if c.MinPasswordLength > 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}
	if c.DBMaxOpenConns > 0 {
		config.DBMaxOpenConns = c.DBMaxOpenConns
	}
	if c.DBMaxIdleConns > 0 {
		config.DBMaxIdleConns = c.DBMaxIdleConns
	}
	if c.DBConnMaxLifetime.Duration > 0 {
		config.DBConnMaxLifetime = c.DBConnMaxLifetime.Duration
	}
	if c.DBConnMaxIdleTime.Duration > 0 {
		config.DBConnMaxIdleTime = c.DBConnMaxIdleTime.Duration
	}
	if c.DBQueryLog {
		config.DBQueryLog = true
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
