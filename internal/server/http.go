package server

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/internal/config"
	"github.com/fragmentforge/escape-api/internal/leaderboard"
	"github.com/fragmentforge/escape-api/internal/question"
	"github.com/fragmentforge/escape-api/internal/session"
)

// Handlers bundles the HTTP surfaces wired into the server. Leaderboard
// may be nil when standings are disabled.
type Handlers struct {
	Sessions    *session.HTTPHandlers
	SessionWS   *session.WSHandler
	Questions   *question.HTTPHandlers
	Leaderboard *leaderboard.HTTPHandler
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, rdb *redis.Client, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			logger.Error().Err(err).Msg("health check: redis unreachable")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/sessions", h.Sessions.Create)
	mux.HandleFunc("GET /v1/sessions/me", h.Sessions.Get)
	mux.HandleFunc("POST /v1/sessions/me/team-name", h.Sessions.SetTeamName)
	mux.HandleFunc("POST /v1/sessions/me/start", h.Sessions.Start)
	mux.HandleFunc("POST /v1/sessions/me/answer", h.Sessions.Answer)
	mux.HandleFunc("POST /v1/sessions/me/finish", h.Sessions.Finish)
	mux.HandleFunc("POST /v1/sessions/me/reset", h.Sessions.Reset)
	mux.HandleFunc("GET /v1/sessions/me/doors/{globalIndex}", h.Sessions.DoorAnswered)
	mux.HandleFunc("GET /v1/sessions/me/export", h.Sessions.Export)

	mux.HandleFunc("GET /v1/questions", h.Questions.GetBank)
	mux.HandleFunc("POST /v1/admin/questions/reload", h.Questions.Reload)

	if h.Leaderboard != nil {
		mux.HandleFunc("GET /v1/leaderboard", h.Leaderboard.HandleGet)
	}

	mux.HandleFunc("GET /ws/session", h.SessionWS.HandleWebSocket)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS, mux),
	}
}

// corsMiddleware answers preflight requests and stamps CORS headers for
// origins on the allow list. The browser client runs on a separate origin.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(cfg.AllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown drains the server within the configured grace period.
func Shutdown(ctx context.Context, srv *http.Server, logger zerolog.Logger) {
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}
}
