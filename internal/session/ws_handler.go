package session

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/pkg/http/ws"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The session token already scopes what a connection can see.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler upgrades connections and subscribes them to their session's
// state broadcasts, so every open tab of a team stays in sync.
type WSHandler struct {
	manager *Manager
	tokens  *TokenManager
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewWSHandler creates the session WebSocket handler.
func NewWSHandler(manager *Manager, tokens *TokenManager, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		manager: manager,
		tokens:  tokens,
		hub:     hub,
		logger:  logger.With().Str("component", "session_ws").Logger(),
	}
}

// HandleWebSocket serves GET /ws/session?token=…. Browsers cannot set
// headers on WebSocket dials, so the token rides in the query string.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	connID := h.hub.Register(sessionID, wsConn)

	go wsConn.WritePump()

	// Initial snapshot so a freshly opened tab renders without waiting for
	// the next transition.
	if state, err := json.Marshal(h.manager.Get(r.Context(), sessionID)); err == nil {
		if payload, err := json.Marshal(ws.SessionStatePayload{
			SessionID: sessionID.String(),
			State:     state,
		}); err == nil {
			_ = wsConn.Send(ws.Message{Type: ws.TypeSessionState, Payload: payload})
		}
	}

	wsConn.ReadPump()
	h.hub.Unregister(connID)
}
