// @title                       JWT Auth API
// @version                     1.0
// @description                 Register, login and fetch the current user with a bearer token.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/jwt-auth/internal/api"
	"github.com/99minutos/jwt-auth/internal/api/handler"
	"github.com/99minutos/jwt-auth/internal/core/ports"
	"github.com/99minutos/jwt-auth/internal/core/service"
	"github.com/99minutos/jwt-auth/internal/infrastructure/db/mongo"
	"github.com/99minutos/jwt-auth/internal/infrastructure/db/postgres"
	"github.com/99minutos/jwt-auth/internal/infrastructure/db/redis"
	"github.com/99minutos/jwt-auth/internal/infrastructure/security"
	"github.com/99minutos/jwt-auth/internal/pkg/config"
	"github.com/99minutos/jwt-auth/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "jwt-auth: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "jwt-auth",
	})

	checks := map[string]handler.PingFunc{}
	repo, closeStore, err := openStore(ctx, cfg, checks, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var lock ports.RegistrationLock
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		checks["redis"] = redis.Ping(client)
		lock = redis.NewRegistrationLock(client, redis.DefaultLockTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("registration lock enabled")
	}

	tokens, err := security.NewTokenManager(cfg.JWTSecret, security.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	hasher := security.NewBcryptHasher(security.WithCost(cfg.Auth.BcryptCost))
	if hasher.Cost() != cfg.Auth.BcryptCost {
		log.Warn().Int("requested", cfg.Auth.BcryptCost).Int("using", hasher.Cost()).Msg("bcrypt cost out of range")
	}

	authService := service.NewAuthService(repo, hasher, tokens, lock, log)

	e := api.NewRouter(api.Dependencies{
		Auth:   authService,
		Tokens: tokens,
		Checks: checks,
		Log:    log,
	}, api.Options{
		RejectUnknownSubject: cfg.Auth.RejectUnknownSubject,
		ExposeInternalErrors: cfg.HTTP.ExposeInternalErrors,
		CORS:                 cfg.HTTP.CORSEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured credential store, prepares its schema and
// registers its readiness check.
func openStore(ctx context.Context, cfg *config.Config, checks map[string]handler.PingFunc, log zerolog.Logger) (ports.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		checks["mongo"] = mongo.Ping(client)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return repo, closeFn, nil

	default:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DatabaseURL()})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = db.Close() }

		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				closeFn()
				return nil, nil, err
			}
			log.Info().Msg("migrations applied")
		}
		checks["postgres"] = db.PingContext
		log.Info().Msg("connected to postgres")
		return postgres.NewUserRepository(db), closeFn, nil
	}
}
