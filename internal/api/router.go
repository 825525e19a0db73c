package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/jwt-auth/docs"
	"github.com/99minutos/jwt-auth/internal/api/handler"
	"github.com/99minutos/jwt-auth/internal/api/middleware"
	"github.com/99minutos/jwt-auth/internal/core/ports"
)

// Options tunes router behaviour.
type Options struct {
	// RejectUnknownSubject refuses valid tokens whose user no longer exists.
	RejectUnknownSubject bool
	// ExposeInternalErrors returns raw internal error messages to clients.
	ExposeInternalErrors bool
	// CORS allows any origin, as browsers calling the API directly need.
	CORS bool
	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil so several routers can coexist (tests).
	Registry *prometheus.Registry
}

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Auth   ports.AuthService
	Tokens ports.TokenVerifier
	Checks map[string]handler.PingFunc
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, opts.ExposeInternalErrors)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registry,
	}))
	if opts.CORS {
		e.Use(echomiddleware.CORS())
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler()
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	gate := []echo.MiddlewareFunc{middleware.Auth(deps.Tokens, deps.Auth, deps.Log)}
	if opts.RejectUnknownSubject {
		gate = append(gate, middleware.RequireProfile())
	}

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Protected routes ---
	e.GET("/user", userHandler.Me, gate...)

	// --- Operational routes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{registry, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Catch-all banner ---
	e.GET("/*", handler.Welcome)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
