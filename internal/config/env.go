package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSnapshotHour           = 3
	defaultSnapshotCallDelay      = 500 * time.Millisecond
	defaultSchedulerCheckInterval = time.Minute
	defaultCacheTTL               = 15 * time.Minute
	defaultRateLimit              = "120-M"
	defaultSQLitePath             = "./data/tubetrack.db"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		DatabaseURL:        databaseURL,
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          jwtSecret,
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		KVBackend:          strings.ToLower(getEnv("KV_BACKEND", BackendPostgres)),
		SQLitePath:         getEnv("SQLITE_PATH", defaultSQLitePath),
		RateLimit:          getEnv("RATE_LIMIT", defaultRateLimit),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	var err error

	if cfg.Location, err = loadLocation(os.Getenv("TIMEZONE")); err != nil {
		return nil, err
	}

	if cfg.SnapshotHour, err = getEnvInt("SNAPSHOT_HOUR", defaultSnapshotHour); err != nil {
		return nil, err
	}

	if cfg.SnapshotHour < 0 || cfg.SnapshotHour > 23 {
		return nil, fmt.Errorf("SNAPSHOT_HOUR must be between 0 and 23, got %d", cfg.SnapshotHour)
	}

	if cfg.SnapshotCallDelay, err = getEnvDuration("SNAPSHOT_CALL_DELAY", defaultSnapshotCallDelay); err != nil {
		return nil, err
	}

	if cfg.SchedulerCheckInterval, err = getEnvDuration("SCHEDULER_CHECK_INTERVAL", defaultSchedulerCheckInterval); err != nil {
		return nil, err
	}

	if cfg.CacheTTL, err = getEnvDuration("YOUTUBE_CACHE_TTL", defaultCacheTTL); err != nil {
		return nil, err
	}

	switch cfg.KVBackend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required when KV_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
	}

	return cfg, nil
}

// true when the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}

	return d, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}

	return loc, nil
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
