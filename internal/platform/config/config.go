// Package config reads service configuration from SURETY_* environment
// variables so main stays lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "surety/pkg/platform/strings"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	ContentMemory = "memory"
	ContentS3     = "s3"
	ContentNone   = "none"

	LedgerMemory = "memory"
	LedgerKafka  = "kafka"

	devSigningKey = "dev-secret-key-change-in-production"
)

type Config struct {
	Server       Server
	Storage      Storage
	Redis        RedisConfig
	ContentStore ContentStore
	Ledger       Ledger
	Auth         Auth
	RateLimit    RateLimit
	Wage         WagePolicy
	Log          Log

	// SitesPath is an optional YAML job-site registry.
	SitesPath   string
	LockTimeout time.Duration
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	Production      bool
}

type Storage struct {
	Backend string
	DSN     string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ContentStore struct {
	Backend  string
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

type Ledger struct {
	Backend          string
	Brokers          []string
	IntentTopic      string
	ReceiptTopic     string
	ConsumerGroup    string
	RetryConcurrency int
	// BreakerThreshold consecutive chain failures open the circuit for
	// BreakerCooldown.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

type Auth struct {
	JWTSigningKey string
	Issuer        string
	// OracleKeyHash is a bcrypt hash; empty disables API key auth.
	OracleKeyHash string
}

// RateLimit is per client. Zero RPS disables a tier.
type RateLimit struct {
	PublicRPS   float64
	PublicBurst int
	OracleRPS   float64
	OracleBurst int
}

// WagePolicy is the wage split in basis points.
type WagePolicy struct {
	WorkerBP    int64
	InsuranceBP int64
	SavingsBP   int64
	ProtocolBP  int64
}

type Log struct {
	Level  string
	Format string
}

// FromEnv builds a Config from the environment and validates it.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}
	cfg := Config{
		Server: Server{
			Addr:            e.str("SURETY_ADDR", ":8080"),
			ShutdownTimeout: e.duration("SURETY_SHUTDOWN_TIMEOUT", 10*time.Second),
			Production:      e.str("SURETY_ENV", "development") == "production",
		},
		Storage: Storage{
			Backend: e.str("SURETY_STORAGE_BACKEND", StorageMemory),
			DSN:     e.str("SURETY_DATABASE_DSN", ""),
		},
		Redis: RedisConfig{
			URL:          e.str("SURETY_REDIS_URL", ""),
			PoolSize:     e.int("SURETY_REDIS_POOL_SIZE", 10),
			MinIdleConns: e.int("SURETY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("SURETY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("SURETY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("SURETY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		ContentStore: ContentStore{
			Backend:  e.str("SURETY_CONTENT_STORE", ContentMemory),
			Bucket:   e.str("SURETY_S3_BUCKET", ""),
			Prefix:   e.str("SURETY_S3_PREFIX", "identity/"),
			Region:   e.str("SURETY_S3_REGION", "us-east-1"),
			Endpoint: e.str("SURETY_S3_ENDPOINT", ""),
		},
		Ledger: Ledger{
			Backend:          e.str("SURETY_LEDGER", LedgerMemory),
			Brokers:          e.list("SURETY_KAFKA_BROKERS"),
			IntentTopic:      e.str("SURETY_KAFKA_INTENT_TOPIC", "surety.ledger.intents"),
			ReceiptTopic:     e.str("SURETY_KAFKA_RECEIPT_TOPIC", "surety.ledger.receipts"),
			ConsumerGroup:    e.str("SURETY_KAFKA_GROUP", "surety"),
			RetryConcurrency: e.int("SURETY_LEDGER_RETRY_CONCURRENCY", 4),
			BreakerThreshold: e.int("SURETY_LEDGER_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  e.duration("SURETY_LEDGER_BREAKER_COOLDOWN", 30*time.Second),
		},
		Auth: Auth{
			// Use a default for development; production must override it.
			JWTSigningKey: e.str("SURETY_JWT_SIGNING_KEY", devSigningKey),
			Issuer:        e.str("SURETY_JWT_ISSUER", "surety"),
			OracleKeyHash: e.str("SURETY_ORACLE_KEY_HASH", ""),
		},
		RateLimit: RateLimit{
			PublicRPS:   e.float("SURETY_RATE_PUBLIC_RPS", 10),
			PublicBurst: e.int("SURETY_RATE_PUBLIC_BURST", 20),
			OracleRPS:   e.float("SURETY_RATE_ORACLE_RPS", 50),
			OracleBurst: e.int("SURETY_RATE_ORACLE_BURST", 100),
		},
		Wage: WagePolicy{
			WorkerBP:    int64(e.int("SURETY_WAGE_WORKER_BP", 8500)),
			InsuranceBP: int64(e.int("SURETY_WAGE_INSURANCE_BP", 500)),
			SavingsBP:   int64(e.int("SURETY_WAGE_SAVINGS_BP", 500)),
			ProtocolBP:  int64(e.int("SURETY_WAGE_PROTOCOL_BP", 500)),
		},
		Log: Log{
			Level:  e.str("SURETY_LOG_LEVEL", "info"),
			Format: e.str("SURETY_LOG_FORMAT", "json"),
		},
		SitesPath:   e.str("SURETY_SITES_FILE", ""),
		LockTimeout: e.duration("SURETY_LOCK_TIMEOUT", 5*time.Second),
	}
	if len(e.errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(e.errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend selections and the settings each one needs.
func (c Config) Validate() error {
	var problems []string
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" {
			problems = append(problems, "SURETY_REDIS_URL is required for the redis backend")
		}
	case StoragePostgres, StorageSQLite:
		if c.Storage.DSN == "" {
			problems = append(problems, "SURETY_DATABASE_DSN is required for the "+c.Storage.Backend+" backend")
		}
	default:
		problems = append(problems, "unknown storage backend "+c.Storage.Backend)
	}
	switch c.ContentStore.Backend {
	case ContentMemory, ContentNone:
	case ContentS3:
		if c.ContentStore.Bucket == "" {
			problems = append(problems, "SURETY_S3_BUCKET is required for the s3 content store")
		}
	default:
		problems = append(problems, "unknown content store "+c.ContentStore.Backend)
	}
	switch c.Ledger.Backend {
	case LedgerMemory:
	case LedgerKafka:
		if len(c.Ledger.Brokers) == 0 {
			problems = append(problems, "SURETY_KAFKA_BROKERS is required for the kafka ledger")
		}
	default:
		problems = append(problems, "unknown ledger "+c.Ledger.Backend)
	}
	if c.Server.Production && c.Auth.JWTSigningKey == devSigningKey {
		problems = append(problems, "SURETY_JWT_SIGNING_KEY must be set in production")
	}
	if sum := c.Wage.WorkerBP + c.Wage.InsuranceBP + c.Wage.SavingsBP + c.Wage.ProtocolBP; sum != 10000 {
		problems = append(problems, fmt.Sprintf("wage basis points sum to %d, want 10000", sum))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UsesDevSigningKey reports whether the built-in development JWT key is active.
func (c Config) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}

type env struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) int(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, key+" must be an integer")
		return def
	}
	return v
}

func (e *env) float(key string, def float64) float64 {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.errs = append(e.errs, key+" must be a number")
		return def
	}
	return v
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, key+" must be a duration")
		return def
	}
	return v
}

func (e *env) list(key string) []string {
	return pstrings.SplitList(e.str(key, ""), ",")
}
