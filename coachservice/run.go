package coachservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/api"
	"github.com/sandilya-stack/coach-server/internal/config"
	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/factory"
	"github.com/sandilya-stack/coach-server/internal/health"
	"github.com/sandilya-stack/coach-server/internal/logger"
	"github.com/sandilya-stack/coach-server/internal/services"
	"github.com/sandilya-stack/coach-server/internal/store"
)

// Run starts the coach service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("coach-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	logger.SetGlobal(log, cfg.LogLevel)

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("ai_provider", cfg.AIProvider).
		Int("http_port", cfg.HTTPPort).
		Msg("Coach service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	ds, closeStore, err := factory.NewDocStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Document store unavailable")
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing document store")
		}
	}()

	svc, err := newCoachService(ctx, cfg, ds, log)
	if err != nil {
		return err
	}

	// Start health checkers before serving so the endpoint reports real state
	svcHealth := startHealthCheckers(ctx, cfg, log, ds)
	router := buildRouter(svc, svcHealth.IsHealthy, cfg, log)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// Migrate applies the document store schema and exits.
func Migrate() error {
	log := logger.New("coach-migrate")
	cfg, err := config.New()
	if err != nil {
		return err
	}
	ctx, stop := newServerContext()
	defer stop()
	return factory.Migrate(ctx, cfg, log)
}

// newCoachService wires stores and the analyzer over ds.
func newCoachService(ctx context.Context, cfg *config.Config, ds docstore.Store, log zerolog.Logger) (*services.CoachService, error) {
	st := store.New(ds, log, store.Options{MaxAttempts: uint64(cfg.ConflictMaxAttempts)})

	analyzer, err := factory.NewAnalyzer(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("AI provider unavailable")
		return nil, err
	}
	return services.NewCoachService(st, analyzer, log, services.Options{MaxTextLength: cfg.MaxTextLength}), nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(svc *services.CoachService, isHealthy func() bool, cfg *config.Config, log zerolog.Logger) *mux.Router {
	coach := api.NewCoachHandler(svc, cfg.MaxTextLength)
	return api.NewRouter(coach, api.NewHealthHandler(isHealthy), log)
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, ds docstore.Store) *health.ServiceChecker {
	interval := cfg.HealthInterval()

	dsChecker := health.NewDocStoreChecker(ds, log, cfg.HealthProbeTimeout())
	go dsChecker.Start(ctx, interval)

	svcHealth := health.NewServiceChecker(log, dsChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	// Analyze and regenerate wait on the AI provider; leave room for retries.
	write := cfg.AITimeout()*time.Duration(cfg.AIMaxRetries+1) + 15*time.Second
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is interval*2, at least HealthMaxWaitSeconds.
func startupHealthTimeout(cfg *config.Config) time.Duration {
	timeout := 2 * cfg.HealthInterval()
	if floor := cfg.HealthMaxWait(); timeout < floor {
		return floor
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth interface{ IsHealthy() bool }) error {
	timeout := startupHealthTimeout(cfg)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
