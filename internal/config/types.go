package config

import "time"

type Config struct {
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	SessionSecret      string
	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string
	Environment        string
	Port               string

	// key-value backend for snapshot persistence and listing cache
	KVBackend  string
	SQLitePath string

	// snapshot scheduling
	Location               *time.Location
	SnapshotHour           int
	SnapshotCallDelay      time.Duration
	SchedulerCheckInterval time.Duration

	// youtube listing cache lifetime
	CacheTTL time.Duration

	// ulule formatted rate, e.g. "120-M"
	RateLimit      string
	AllowedOrigins []string
}

// parsed flags for tracker subcommands
type Flags struct {
	Account string
	Video   string
	Format  string
	Output  string
}

// supported KV backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)
