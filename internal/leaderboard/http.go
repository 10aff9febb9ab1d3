package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	httperrors "github.com/fragmentforge/escape-api/pkg/http/errors"
)

type topProvider interface {
	Top(ctx context.Context, window string, limit int) ([]Entry, error)
}

// HTTPHandler serves leaderboard reads.
type HTTPHandler struct {
	service topProvider
	logger  zerolog.Logger
}

// NewHTTPHandler creates the leaderboard HTTP handler.
func NewHTTPHandler(service topProvider, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet serves GET /v1/leaderboard?window=daily|all_time&limit=N.
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("window")
	if window == "" {
		window = WindowAllTime
	}
	if window != WindowDaily && window != WindowAllTime {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnknownWindow, "window must be daily or all_time")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.Top(r.Context(), window, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("window", window).Msg("leaderboard fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeLeaderboardFetchFailed, "could not fetch leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"window":  window,
		"entries": entries,
	})
}
