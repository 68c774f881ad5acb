package api

import (
	"net/http"

	"github.com/gatherhall/server/internal/api/handlers"
	"github.com/gatherhall/server/internal/api/middleware"
	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/auth"
	"github.com/gatherhall/server/internal/config"
	"github.com/gatherhall/server/internal/domain/events"
	"github.com/gatherhall/server/internal/domain/users"
	"github.com/gatherhall/server/internal/metrics"
	"github.com/gatherhall/server/internal/storage"
	"github.com/gatherhall/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// BuildInfo identifies the running binary in health responses.
type BuildInfo struct {
	Version   string
	GitCommit string
}

// NewRouter wires the repository, services, handlers, and middleware
// stack. The pool is owned by the caller so its lifecycle matches the
// process, not the router.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, build BuildInfo) (http.Handler, error) {
	var repo storage.Repository
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	usersService := users.NewService(repo.Users(), logger)
	eventsService := events.NewService(repo, cfg.Events, logger)
	auditService := audit.NewService(repo.Logs(), logger)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)

	authHandler := handlers.NewAuthHandler(usersService, jwtManager, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	logsHandler := handlers.NewLogsHandler(auditService, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(pool, build.Version, build.GitCommit)

	// The tier wrapper must run before the limiter so the limiter sees
	// the tier in context. One limiter store is shared across routes.
	rateLimit := middleware.RateLimit(cfg.RateLimit)
	requireAuth := middleware.RequireAuth(cfg.Environment)
	tierAuth := middleware.WithRateLimitTier(middleware.TierAuth)
	tierLogin := middleware.WithRateLimitTier(middleware.TierLogin)

	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return tierAuth(rateLimit(requireAuth(h)))
	}
	login := func(h http.HandlerFunc) http.Handler {
		return tierLogin(rateLimit(h))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", healthChecker.Health())
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST /api/v1/auth/register", login(authHandler.Register))
	mux.Handle("POST /api/v1/auth/login", login(authHandler.Login))
	mux.Handle("PUT /api/v1/users/{id}/role", authed(authHandler.SetRole))

	mux.Handle("GET /api/v1/events", public(eventsHandler.List))
	mux.Handle("POST /api/v1/events", authed(eventsHandler.Create))
	mux.Handle("GET /api/v1/events/{id}", public(eventsHandler.Get))
	mux.Handle("PATCH /api/v1/events/{id}", authed(eventsHandler.Update))
	mux.Handle("DELETE /api/v1/events/{id}", authed(eventsHandler.Delete))
	mux.Handle("POST /api/v1/events/{id}/join", authed(eventsHandler.Join))
	mux.Handle("DELETE /api/v1/events/{id}/join", authed(eventsHandler.Leave))
	mux.Handle("GET /api/v1/events/{id}/participants", authed(eventsHandler.Participants))
	mux.Handle("GET /api/v1/events/{id}/logs", authed(logsHandler.EventLogs))
	mux.Handle("GET /api/v1/logs", authed(logsHandler.List))

	var handler http.Handler = mux
	handler = middleware.Authenticate(jwtManager, usersService, cfg.Environment)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = metrics.InstrumentHTTP(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler, nil
}
