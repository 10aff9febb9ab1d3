package ws

import "encoding/json"

// MessageType constants for the WebSocket protocol. Traffic is almost
// entirely server -> client: the browser submits intents over HTTP and
// listens here so every open tab of a team renders the same session.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypePong              = "pong"
	TypeSessionState      = "session_state"
	TypeSessionReset      = "session_reset"
	TypeSessionComplete   = "session_complete"
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SessionStatePayload carries a full state snapshot after a transition.
// The session document itself is embedded as raw JSON so this package does
// not depend on the game types.
type SessionStatePayload struct {
	SessionID string          `json:"session_id"`
	State     json.RawMessage `json:"state"`
}

// SessionCompletePayload announces that all doors have been answered.
type SessionCompletePayload struct {
	SessionID  string `json:"session_id"`
	TeamName   string `json:"team_name"`
	TotalScore int    `json:"total_score"`
}

// LeaderboardUpdatePayload signals that a window's standings changed.
type LeaderboardUpdatePayload struct {
	Window string `json:"window"`
}

// ErrorPayload reports a protocol-level problem to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
