package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs and verifies every token. Rotating it logs everybody out.
	JWTSecret string `env:"JWT_SECRET"`

	StoreDriver string `env:"STORE_DRIVER, default=postgres"`

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Auth     AuthConfig
	HTTP     HTTPConfig
}

type PostgresConfig struct {
	URL    string `env:"DATABASE_URL"`
	DevURL string `env:"DEV_DB_URL"`
	// Migrate applies the embedded schema migrations at startup.
	Migrate bool `env:"DB_MIGRATE, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=jwt_auth"`
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=false"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

type AuthConfig struct {
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL,   default=1h"`
	BcryptCost int           `env:"AUTH_BCRYPT_COST, default=10"`
	// RejectUnknownSubject turns a valid token for a deleted user into a 403
	// instead of an anonymous pass-through.
	RejectUnknownSubject bool `env:"AUTH_REJECT_UNKNOWN_SUBJECT, default=false"`
}

type HTTPConfig struct {
	ExposeInternalErrors bool          `env:"HTTP_EXPOSE_INTERNAL_ERRORS, default=true"`
	CORSEnabled          bool          `env:"HTTP_CORS_ENABLED,           default=true"`
	ShutdownTimeout      time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,       default=10s"`
}

// DatabaseURL returns DATABASE_URL, falling back to DEV_DB_URL.
func (c PostgresConfig) DatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	return c.DevURL
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case StorePostgres:
		if c.Postgres.DatabaseURL() == "" {
			errs = append(errs, errors.New("DATABASE_URL (or DEV_DB_URL) is required for the postgres store"))
		}
	case StoreMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DB are required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes and validates configuration from an arbitrary source.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
