package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every tunable the core consumes. Values come from the
// environment with production defaults; godotenv loading happens in main.
type Config struct {
	DatabaseURL string
	HTTPPort    string

	// Session cookie. The cookie value is an HS256-signed claim set
	// carrying the durable session token.
	CookieName   string
	CookieSecure bool
	JWTSecret    string

	SessionLifetime time.Duration
	TokenBytes      int

	// Brute-force lockout.
	LockoutThreshold int
	AttemptWindow    time.Duration
	LockoutDuration  time.Duration

	// Retention horizons for the periodic sweeps.
	AttemptRetention time.Duration
	AuditRetention   time.Duration

	PasswordMinLength int

	// Attempt ledger backend: "db" (default) or "redis".
	AttemptBackend string
	RedisAddr      string
}

func Load() Config {
	return Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getString("HTTP_PORT", "8080"),
		CookieName:        getString("SESSION_COOKIE_NAME", "authcore_session"),
		CookieSecure:      getBool("SESSION_COOKIE_SECURE", false),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionLifetime:   getSeconds("SESSION_LIFETIME_SECONDS", 86400),
		TokenBytes:        getInt("SESSION_TOKEN_BYTES", 32),
		LockoutThreshold:  getInt("LOCKOUT_THRESHOLD", 5),
		AttemptWindow:     getSeconds("ATTEMPT_WINDOW_SECONDS", 900),
		LockoutDuration:   getSeconds("LOCKOUT_DURATION_SECONDS", 900),
		AttemptRetention:  getDays("ATTEMPT_RETENTION_DAYS", 30),
		AuditRetention:    getDays("AUDIT_RETENTION_DAYS", 90),
		PasswordMinLength: getInt("PASSWORD_MIN_LENGTH", 8),
		AttemptBackend:    getString("ATTEMPT_BACKEND", "db"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getSeconds(key string, def int) time.Duration {
	return time.Duration(getInt(key, def)) * time.Second
}

func getDays(key string, def int) time.Duration {
	return time.Duration(getInt(key, def)) * 24 * time.Hour
}
