package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// MemoryDatabaseURL selects the in-memory stores instead of PostgreSQL.
const MemoryDatabaseURL = "memory://"

// Cooldown backends.
const (
	CooldownBackendAuto     = "auto"
	CooldownBackendMemory   = "memory"
	CooldownBackendPostgres = "postgres"
	CooldownBackendRedis    = "redis"
)

// RequiredVars must be present in the environment before the server starts.
var RequiredVars = []string{"DATABASE_URL", "ANON_API_KEY"}

// Config is the full server configuration.
type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Voting   Voting
	Audit    Audit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `env:"BALLOT_ADDR" envDefault:":8080"`
	AnonAPIKey     string        `env:"ANON_API_KEY"`
	AdminToken     string        `env:"ADMIN_TOKEN"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
}

// Database configures the ledger storage.
type Database struct {
	URL       string        `env:"DATABASE_URL"`
	TxTimeout time.Duration `env:"DB_TX_TIMEOUT" envDefault:"5s"`
}

// InMemory reports whether the process should run without PostgreSQL.
func (d Database) InMemory() bool {
	return d.URL == "" || d.URL == MemoryDatabaseURL
}

// RedisConfig configures the optional Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Voting holds the anti-duplicate workflow settings.
type Voting struct {
	Cooldown              time.Duration `env:"VOTE_COOLDOWN" envDefault:"24h"`
	CooldownBackend       string        `env:"COOLDOWN_BACKEND" envDefault:"auto"`
	CooldownCleanup       time.Duration `env:"COOLDOWN_CLEANUP_INTERVAL" envDefault:"10m"`
	StatsSnapshotSchedule string        `env:"STATS_SNAPSHOT_SCHEDULE" envDefault:"@daily"`
}

// Audit configures the vote audit sinks. Without brokers events stay in memory.
type Audit struct {
	KafkaBrokers []string `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"AUDIT_KAFKA_TOPIC" envDefault:"vote-audit"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Audit.KafkaBrokers = dedupeAndTrim(cfg.Audit.KafkaBrokers)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Voting.CooldownBackend {
	case CooldownBackendAuto, CooldownBackendMemory, CooldownBackendPostgres, CooldownBackendRedis:
	default:
		return fmt.Errorf("invalid COOLDOWN_BACKEND %q", c.Voting.CooldownBackend)
	}
	if c.Voting.CooldownBackend == CooldownBackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("COOLDOWN_BACKEND=redis requires REDIS_URL")
	}
	if c.Voting.CooldownBackend == CooldownBackendPostgres && c.Database.InMemory() {
		return fmt.Errorf("COOLDOWN_BACKEND=postgres requires a postgres DATABASE_URL")
	}
	if c.Voting.Cooldown <= 0 {
		return fmt.Errorf("VOTE_COOLDOWN must be positive")
	}
	return nil
}

// MissingVars returns the names in required that lookup reports as unset or blank.
func MissingVars(required []string, lookup func(string) (string, bool)) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var missing []string
	for _, name := range required {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// dedupeAndTrim drops blank and repeated entries, preserving order.
func dedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
