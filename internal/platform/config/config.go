package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
	liststrings "custody/pkg/platform/strings"
)

// DevSigningKey is used when CUSTODY_JWT_SIGNING_KEY is unset. Never use it
// outside local development.
const DevSigningKey = "dev-secret-key-change-in-production"

// Server captures process level configuration.
type Server struct {
	Addr         string `env:"CUSTODY_ADDR" envDefault:":8080"`
	AdminAddress string `env:"CUSTODY_ADMIN_ADDRESS"`
	OpsToken     string `env:"CUSTODY_OPS_TOKEN"`

	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Outbox    OutboxConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Log       LogConfig
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSigningKey string        `env:"CUSTODY_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"CUSTODY_JWT_ISSUER" envDefault:"custody"`
	JWTAudience   string        `env:"CUSTODY_JWT_AUDIENCE" envDefault:"custody-api"`
	TokenTTL      time.Duration `env:"CUSTODY_TOKEN_TTL" envDefault:"1h"`
}

// DatabaseConfig selects the Postgres store. An empty URL keeps state in memory.
type DatabaseConfig struct {
	URL             string        `env:"CUSTODY_DATABASE_URL"`
	MaxOpenConns    int           `env:"CUSTODY_DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"CUSTODY_DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CUSTODY_DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the token revocation list. An empty URL keeps it in memory.
type RedisConfig struct {
	URL          string        `env:"CUSTODY_REDIS_URL"`
	PoolSize     int           `env:"CUSTODY_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"CUSTODY_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"CUSTODY_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"CUSTODY_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"CUSTODY_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures the outbox relay. The relay only runs with both
// a database and at least one broker.
type KafkaConfig struct {
	Brokers           []string `env:"CUSTODY_KAFKA_BROKERS" envSeparator:","`
	Topic             string   `env:"CUSTODY_KAFKA_TOPIC" envDefault:"custody.audit"`
	Partitions        int32    `env:"CUSTODY_KAFKA_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"CUSTODY_KAFKA_REPLICATION_FACTOR" envDefault:"1"`
}

type OutboxConfig struct {
	PollInterval time.Duration `env:"CUSTODY_OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	BatchSize    int           `env:"CUSTODY_OUTBOX_BATCH_SIZE" envDefault:"100"`
}

// RateLimitConfig sets per-caller budgets for reads and writes. Counters live
// in Redis when it is configured.
type RateLimitConfig struct {
	Enabled       bool          `env:"CUSTODY_RATELIMIT_ENABLED" envDefault:"true"`
	ReadRequests  int           `env:"CUSTODY_RATELIMIT_READ_REQUESTS" envDefault:"300"`
	WriteRequests int           `env:"CUSTODY_RATELIMIT_WRITE_REQUESTS" envDefault:"60"`
	Window        time.Duration `env:"CUSTODY_RATELIMIT_WINDOW" envDefault:"1m"`
}

// TracingConfig exports service spans over OTLP/HTTP when an endpoint is set.
type TracingConfig struct {
	Enabled     bool    `env:"CUSTODY_OTEL_ENABLED" envDefault:"true"`
	Endpoint    string  `env:"CUSTODY_OTEL_ENDPOINT"`
	SampleRatio float64 `env:"CUSTODY_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

type LogConfig struct {
	Level  string `env:"CUSTODY_LOG_LEVEL" envDefault:"info"`
	Format string `env:"CUSTODY_LOG_FORMAT" envDefault:"json"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg, err := env.ParseAs[Server]()
	if err != nil {
		return Server{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "parse environment")
	}
	cfg.Kafka.Brokers = liststrings.NormalizeList(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Server) Validate() error {
	if c.AdminAddress != "" {
		if _, err := id.ParseAddress(c.AdminAddress); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "CUSTODY_ADMIN_ADDRESS is not a valid address")
		}
	}
	if c.Auth.TokenTTL <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "CUSTODY_TOKEN_TTL must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unsupported log format %q", c.Log.Format))
	}
	if c.RateLimit.Enabled && c.RateLimit.Window <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "CUSTODY_RATELIMIT_WINDOW must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "CUSTODY_OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.Outbox.BatchSize <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "CUSTODY_OUTBOX_BATCH_SIZE must be positive")
	}
	return nil
}

// UsesDevSigningKey reports whether tokens are signed with the development key.
func (c Server) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == DevSigningKey
}

// RelayEnabled reports whether the outbox relay has somewhere to read and write.
func (c Server) RelayEnabled() bool {
	return c.Database.URL != "" && len(c.Kafka.Brokers) > 0
}
