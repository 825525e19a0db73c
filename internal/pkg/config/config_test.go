package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s3cret",
		"DATABASE_URL": "postgres://localhost/auth",
	}))
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %q", cfg.Port)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Errorf("expected postgres store, got %q", cfg.StoreDriver)
	}
	if !cfg.Postgres.Migrate {
		t.Error("expected migrations enabled by default")
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis disabled by default")
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected 1h token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.RejectUnknownSubject {
		t.Error("expected unknown subjects to pass through by default")
	}
	if !cfg.HTTP.ExposeInternalErrors || !cfg.HTTP.CORSEnabled {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.HTTP.ShutdownTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                  "s3cret",
		"PORT":                        "8081",
		"ENV":                         "production",
		"STORE_DRIVER":                "mongo",
		"MONGO_URI":                   "mongodb://mongo:27017",
		"MONGO_DB":                    "auth",
		"REDIS_ENABLED":               "true",
		"REDIS_ADDR":                  "redis:6379",
		"REDIS_DB":                    "2",
		"AUTH_TOKEN_TTL":              "15m",
		"AUTH_BCRYPT_COST":            "12",
		"AUTH_REJECT_UNKNOWN_SUBJECT": "true",
		"HTTP_EXPOSE_INTERNAL_ERRORS": "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Port != "8081" || cfg.IsDevelopment() {
		t.Errorf("unexpected server settings: port=%q env=%q", cfg.Port, cfg.Env)
	}
	if cfg.StoreDriver != StoreMongo || cfg.Mongo.Database != "auth" {
		t.Errorf("unexpected store settings: %q %+v", cfg.StoreDriver, cfg.Mongo)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis settings: %+v", cfg.Redis)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute || cfg.Auth.BcryptCost != 12 || !cfg.Auth.RejectUnknownSubject {
		t.Errorf("unexpected auth settings: %+v", cfg.Auth)
	}
	if cfg.HTTP.ExposeInternalErrors {
		t.Error("expected internal errors hidden")
	}
}

func TestLoadFrom_DevDatabaseURLFallback(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"DEV_DB_URL": "postgres://dev/auth",
	}))
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if got := cfg.Postgres.DatabaseURL(); got != "postgres://dev/auth" {
		t.Fatalf("expected DEV_DB_URL fallback, got %q", got)
	}

	cfg.Postgres.URL = "postgres://prod/auth"
	if got := cfg.Postgres.DatabaseURL(); got != "postgres://prod/auth" {
		t.Fatalf("expected DATABASE_URL to win, got %q", got)
	}
}

func TestLoadFrom_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"DATABASE_URL": "postgres://localhost/auth"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "blank secret",
			env:     map[string]string{"JWT_SECRET": "   ", "DATABASE_URL": "postgres://localhost/auth"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"},
			wantErr: `unknown STORE_DRIVER "sqlite"`,
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"JWT_SECRET": "s"},
			wantErr: "DATABASE_URL (or DEV_DB_URL) is required",
		},
		{
			name:    "non-positive ttl",
			env:     map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "postgres://x", "AUTH_TOKEN_TTL": "0s"},
			wantErr: "AUTH_TOKEN_TTL must be positive",
		},
		{
			name:    "unparseable duration",
			env:     map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "postgres://x", "AUTH_TOKEN_TTL": "soon"},
			wantErr: "process environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "JWT_SECRET=from-file\nDATABASE_URL=postgres://file/auth\nPORT=4000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	// Process environment wins over the file.
	t.Setenv("PORT", "5000")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("expected secret from file, got %q", cfg.JWTSecret)
	}
	if cfg.Port != "5000" {
		t.Errorf("expected environment port to win, got %q", cfg.Port)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}
