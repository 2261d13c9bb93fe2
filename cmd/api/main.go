// Package main is the entrypoint for the Biblio API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/cache"
	"github.com/biblio/biblio/internal/config"
	"github.com/biblio/biblio/internal/handler"
	"github.com/biblio/biblio/internal/middleware"
	"github.com/biblio/biblio/internal/repository"
	"github.com/biblio/biblio/internal/server"
	"github.com/biblio/biblio/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	authService := service.NewAuthService(repo, cacheClient, issuer, cfg.RefreshTokenTTL)
	catalogService := service.NewCatalogService(repo)
	borrowService := service.NewBorrowService(repo)
	userService := service.NewUserService(repo)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	bookHandler := handler.NewBookHandler(catalogService, borrowService, logger)
	genreHandler := handler.NewGenreHandler(catalogService, logger)
	userHandler := handler.NewUserHandler(userService, borrowService, logger)

	r := setupRouter(routerDeps{
		base:   h,
		health: healthHandler,
		auth:   authHandler,
		books:  bookHandler,
		genres: genreHandler,
		users:  userHandler,
		issuer: issuer,
		cache:  cacheClient,
		cfg:    cfg,
		logger: logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	base   *handler.Handler
	health *handler.HealthHandler
	auth   *handler.AuthHandler
	books  *handler.BookHandler
	genres *handler.GenreHandler
	users  *handler.UserHandler
	issuer *auth.TokenIssuer
	cache  *cache.Cache
	cfg    *config.Config
	logger *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	authMW := middleware.Auth(middleware.AuthConfig{
		Logger: deps.logger,
		Issuer: deps.issuer,
	})
	adminMW := middleware.RequireAdmin(deps.logger)

	rateLimitMW := middleware.RateLimitAuth(middleware.RateLimitConfig{
		Logger:      deps.logger,
		Cache:       deps.cache,
		AuthEnabled: deps.cfg.RateLimitAuthEnabled,
		AuthRPS:     deps.cfg.RateLimitAuthRPS,
		AuthBurst:   deps.cfg.RateLimitAuthBurst,
	})

	// Credential endpoints (rate limited per IP, no auth required)
	r.Group(func(r chi.Router) {
		r.Use(rateLimitMW)
		r.Post("/register", deps.auth.Register)
		r.Post("/token", deps.auth.Token)
		r.Post("/token/refresh", deps.auth.TokenRefresh)
	})

	// Catalog
	r.Route("/books", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", deps.books.List)
		r.With(adminMW).Post("/", deps.books.Create)
		r.Get("/{id}", deps.books.Get)
		r.With(adminMW).Put("/{id}", deps.books.Update)
		r.With(adminMW).Delete("/{id}", deps.books.Delete)
		r.Post("/{id}/borrow", deps.books.Borrow)
		r.Post("/{id}/return", deps.books.Return)
	})

	r.Route("/genres", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", deps.genres.List)
		r.With(adminMW).Post("/", deps.genres.Create)
		r.Get("/{id}", deps.genres.Get)
		r.With(adminMW).Put("/{id}", deps.genres.Update)
		r.With(adminMW).Delete("/{id}", deps.genres.Delete)
	})

	// User management and per-user borrow views. The fixed paths
	// (/borrowed, /my-history) are registered before the {id} routes.
	r.Route("/users", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/borrowed", deps.users.MyBorrowed)
		r.Get("/my-history", deps.users.MyHistory)
		r.With(adminMW).Get("/", deps.users.List)
		r.With(adminMW).Get("/{id}", deps.users.Get)
		r.With(adminMW).Put("/{id}", deps.users.Update)
		r.With(adminMW).Delete("/{id}", deps.users.Delete)
		r.Get("/{id}/borrowed", deps.users.Borrowed)
		r.Get("/{id}/history", deps.users.History)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
