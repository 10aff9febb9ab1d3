package session

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/fragmentforge/escape-api/pkg/http/errors"
)

// HTTPHandlers exposes the engine's intents to the browser client. Request
// and response bodies use the client's camelCase field names.
type HTTPHandlers struct {
	manager *Manager
	tokens  *TokenManager
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(manager *Manager, tokens *TokenManager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		tokens:  tokens,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// CreateSessionRequest optionally names the team at creation time.
type CreateSessionRequest struct {
	TeamName string `json:"teamName"`
}

// Create handles POST /v1/sessions.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
			return
		}
	}

	id, state := h.manager.Create(r.Context())
	if req.TeamName != "" {
		state = h.manager.SetTeamName(r.Context(), id, strings.TrimSpace(req.TeamName))
	}

	token, err := h.tokens.Generate(id)
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionCreateFailed, "could not create session")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{
		"token":   token,
		"session": state,
	})
}

// Get handles GET /v1/sessions/me.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.manager.Get(r.Context(), id))
}

// TeamNameRequest carries the setTeamName intent.
type TeamNameRequest struct {
	TeamName string `json:"teamName"`
}

// SetTeamName handles POST /v1/sessions/me/team-name.
func (h *HTTPHandlers) SetTeamName(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req TeamNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	h.respondJSON(w, http.StatusOK, h.manager.SetTeamName(r.Context(), id, strings.TrimSpace(req.TeamName)))
}

// Start handles POST /v1/sessions/me/start.
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.manager.Start(r.Context(), id))
}

// AnswerRequest carries the answer intent for one door.
type AnswerRequest struct {
	Room            int `json:"room"`
	Door            int `json:"door"`
	DoorGlobalIndex int `json:"doorGlobalIndex"`
	SelectedIndex   int `json:"selectedIndex"`
}

// AnswerResponse reports whether the answer was recorded plus the resulting
// state. A rejected answer is not an error; the client simply sees that
// nothing happened.
type AnswerResponse struct {
	Accepted bool `json:"accepted"`
	Session  any  `json:"session"`
}

// Answer handles POST /v1/sessions/me/answer.
func (h *HTTPHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	state, accepted := h.manager.Answer(r.Context(), id, req.Room, req.Door, req.DoorGlobalIndex, req.SelectedIndex)
	h.respondJSON(w, http.StatusOK, AnswerResponse{Accepted: accepted, Session: state})
}

// Finish handles POST /v1/sessions/me/finish.
func (h *HTTPHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.manager.Finish(r.Context(), id))
}

// Reset handles POST /v1/sessions/me/reset.
func (h *HTTPHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.manager.Reset(r.Context(), id))
}

// DoorAnswered handles GET /v1/sessions/me/doors/{globalIndex}.
func (h *HTTPHandlers) DoorAnswered(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	globalIndex, err := strconv.Atoi(r.PathValue("globalIndex"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "globalIndex must be an integer")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{
		"answered": h.manager.IsDoorAnswered(r.Context(), id, globalIndex),
	})
}

// Export handles GET /v1/sessions/me/export, serving the results document
// as a download.
func (h *HTTPHandlers) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	export := h.manager.Export(r.Context(), id)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="fragment-forge-session.json"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		h.logger.Warn().Err(err).Msg("export encode failed")
	}
}

// sessionID resolves the session named by the request's bearer token.
func (h *HTTPHandlers) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	header := r.Header.Get("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" || raw == header {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "missing session token")
		return uuid.Nil, false
	}

	id, err := h.tokens.Validate(raw)
	if err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "invalid or expired session token")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("response encode failed")
	}
}
