package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/sandilya-stack/coach-server/internal/api/recovery"
	"github.com/sandilya-stack/coach-server/internal/metrics"
)

// NewRouter wires the coach endpoints. Routes are scoped by the opaque user id resolved upstream.
func NewRouter(coach *CoachHandler, health *HealthHandler, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(hlog.NewHandler(log))
	router.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	router.Use(recovery.Middleware)

	router.HandleFunc("/api/health", health.CheckHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	users := router.PathPrefix("/api/users/{userId}").Subrouter()

	users.HandleFunc("/sessions", coach.CreateSession).Methods(http.MethodPost)
	users.HandleFunc("/sessions", coach.ListSessions).Methods(http.MethodGet)
	users.HandleFunc("/sessions/{sessionId}", coach.GetSession).Methods(http.MethodGet)
	users.HandleFunc("/sessions/{sessionId}/analyze", coach.AnalyzeSession).Methods(http.MethodPost)
	users.HandleFunc("/sessions/{sessionId}/regenerate", coach.RegenerateTips).Methods(http.MethodPost)
	users.HandleFunc("/sessions/{sessionId}/tips/{tipId}/swipe", coach.SwipeTip).Methods(http.MethodPost)

	users.HandleFunc("/preferences", coach.GetPreferences).Methods(http.MethodGet)
	users.HandleFunc("/tips/valuable", coach.ValuableTips).Methods(http.MethodGet)

	return router
}
