package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// unparsable variables leave the current value untouched; required values
// are enforced later by Validate.
func parseEnv(config *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.DatabaseURL = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		config.AuthSecret = v
	}
	if v := os.Getenv("AUTH_URL"); v != "" {
		config.AuthURL = v
	}
	if v := os.Getenv("AUTH_PUBLIC_URL"); v != "" {
		config.PublicAuthURL = v
	}
	if v := os.Getenv("AUTH_LISTEN_ADDR"); v != "" {
		config.ListenAddr = v
	}
	if v := os.Getenv("TRUSTED_ORIGINS"); v != "" {
		config.TrustedOrigins = splitOrigins(v)
	}

	if d, ok := envDuration("AUTH_SESSION_TTL"); ok {
		config.SessionValidityDuration = d
	}
	if d, ok := envDuration("AUTH_TOKEN_TTL"); ok {
		config.TokenValidityDuration = d
	}
	if d, ok := envDuration("AUTH_VERIFICATION_TTL"); ok {
		config.VerificationValidityDuration = d
	}
	if n, ok := envInt("AUTH_MIN_PASSWORD_LENGTH"); ok {
		config.MinPasswordLength = n
	}

	if n, ok := envInt("DB_MAX_OPEN_CONNS"); ok {
		config.DBMaxOpenConns = n
	}
	if n, ok := envInt("DB_MAX_IDLE_CONNS"); ok {
		config.DBMaxIdleConns = n
	}
	if d, ok := envDuration("DB_CONN_MAX_LIFETIME"); ok {
		config.DBConnMaxLifetime = d
	}
	if d, ok := envDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		config.DBConnMaxIdleTime = d
	}
	if v := os.Getenv("DB_QUERY_LOG"); v != "" {
		config.DBQueryLog = v == "true" || v == "1"
	}

	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		config.S3AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		config.S3SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}

// splitOrigins parses a comma-separated origin list, trimming whitespace and
// dropping empty entries.
func splitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
