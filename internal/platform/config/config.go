package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"

	"microauth/pkg/domain"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// EnvDevelopment is the only environment that may run with DevSigningKey.
const EnvDevelopment = "development"

// DevSigningKey is the fallback caller-token key for local runs.
const DevSigningKey = "dev-signing-key-change-in-production"

// Config is the full process configuration. Every field can be set by flag
// or environment variable.
type Config struct {
	Addr            string        `long:"addr" env:"MICROAUTH_ADDR" default:":8080" description:"HTTP listen address"`
	Environment     string        `long:"environment" env:"MICROAUTH_ENV" default:"development" description:"deployment environment name"`
	AdminAddress    string        `long:"admin-address" env:"MICROAUTH_ADMIN_ADDRESS" description:"wallet that administers a freshly created registry"`
	StoreBackend    string        `long:"store" env:"MICROAUTH_STORE" default:"memory" choice:"memory" choice:"postgres" choice:"redis" description:"registry persistence backend"`
	RequestTimeout  time.Duration `long:"request-timeout" env:"MICROAUTH_REQUEST_TIMEOUT" default:"30s" description:"per-request handler timeout"`
	ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"MICROAUTH_SHUTDOWN_TIMEOUT" default:"10s" description:"time allowed for graceful shutdown"`
	MigrateOnStart  bool          `long:"migrate" env:"MICROAUTH_MIGRATE" description:"apply postgres migrations before serving"`

	Log      LogConfig      `group:"Logging" namespace:"log"`
	JWT      JWTConfig      `group:"Caller tokens" namespace:"jwt"`
	Database DatabaseConfig `group:"Postgres" namespace:"database"`
	Redis    RedisConfig    `group:"Redis" namespace:"redis"`
	Kafka    KafkaConfig    `group:"Kafka" namespace:"kafka"`
}

type LogConfig struct {
	Level  string `long:"level" env:"LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"minimum log level"`
	Format string `long:"format" env:"LOG_FORMAT" default:"json" choice:"json" choice:"text" description:"log output format"`
}

type JWTConfig struct {
	SigningKey string        `long:"signing-key" env:"JWT_SIGNING_KEY" default:"dev-signing-key-change-in-production" description:"HMAC key for caller tokens"`
	Issuer     string        `long:"issuer" env:"JWT_ISSUER" default:"microauth" description:"expected token issuer"`
	TTL        time.Duration `long:"ttl" env:"JWT_TTL" default:"15m" description:"lifetime of minted caller tokens"`
}

type DatabaseConfig struct {
	URL             string        `long:"url" env:"DATABASE_URL" description:"postgres connection URL"`
	MaxOpenConns    int           `long:"max-open-conns" env:"DATABASE_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `long:"max-idle-conns" env:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `long:"conn-max-lifetime" env:"DATABASE_CONN_MAX_LIFETIME" default:"5m"`
}

type RedisConfig struct {
	URL           string        `long:"url" env:"REDIS_URL" description:"redis connection URL"`
	KeyPrefix     string        `long:"key-prefix" env:"REDIS_KEY_PREFIX" default:"microauth:" description:"prefix for every registry key"`
	PoolSize      int           `long:"pool-size" env:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns  int           `long:"min-idle-conns" env:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout   time.Duration `long:"dial-timeout" env:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout   time.Duration `long:"read-timeout" env:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout  time.Duration `long:"write-timeout" env:"REDIS_WRITE_TIMEOUT" default:"3s"`
	StatsInterval time.Duration `long:"stats-interval" env:"REDIS_STATS_INTERVAL" default:"15s" description:"pool metrics sampling period"`
}

type KafkaConfig struct {
	Brokers         string        `long:"brokers" env:"KAFKA_BROKERS" description:"comma-separated seed brokers; empty disables event publishing"`
	Topic           string        `long:"topic" env:"KAFKA_TOPIC" default:"microauth.registry.events"`
	Acks            string        `long:"acks" env:"KAFKA_ACKS" default:"all" choice:"0" choice:"1" choice:"all"`
	Retries         int           `long:"retries" env:"KAFKA_RETRIES" default:"3"`
	DeliveryTimeout time.Duration `long:"delivery-timeout" env:"KAFKA_DELIVERY_TIMEOUT" default:"30s"`
}

// Load parses args (without the program name) and the environment.
// A help request surfaces as a *flags.Error of type flags.ErrHelp.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsHelp reports whether err is go-flags' help request.
func IsHelp(err error) bool {
	var ferr *flags.Error
	return errors.As(err, &ferr) && ferr.Type == flags.ErrHelp
}

// Validate checks cross-field requirements that tags cannot express.
func (c *Config) Validate() error {
	if c.AdminAddress != "" && !domain.IsValidWalletAddress(c.AdminAddress) {
		return fmt.Errorf("admin address must be %d uppercase letters A-Z", domain.WalletAddressLength)
	}
	switch c.StoreBackend {
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("postgres store requires DATABASE_URL")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return errors.New("redis store requires REDIS_URL")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.JWT.SigningKey == "" {
		return errors.New("jwt signing key must not be empty")
	}
	if c.UsingDevSigningKey() && c.Environment != EnvDevelopment {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in the %q environment", c.Environment)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	return nil
}

// UsingDevSigningKey reports whether caller tokens are signed with the built-in key.
func (c *Config) UsingDevSigningKey() bool {
	return c.JWT.SigningKey == DevSigningKey
}

// KafkaEnabled reports whether registry events should be published.
func (c *Config) KafkaEnabled() bool {
	return c.Kafka.Brokers != ""
}
