//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	wsmsg "github.com/fragmentforge/escape-api/pkg/http/ws"
)

func TestWebSocketSessionState(t *testing.T) {
	baseHTTP := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	baseWS := envOrDefault("INTEGRATION_WS_URL", "ws://localhost:8080/ws/session")

	info := createSession(t, baseHTTP, "socketeers")

	conn := dialSessionWS(t, baseWS, info.Token)
	defer conn.Close()

	// The handler pushes a snapshot immediately on connect.
	first := waitForSessionState(t, conn, 5*time.Second)
	if first.TeamName != "socketeers" {
		t.Fatalf("initial snapshot team mismatch: %q", first.TeamName)
	}

	// A transition over HTTP must reach the open socket.
	postIntent(t, baseHTTP, info.Token, "/v1/sessions/me/start", nil, nil)

	started := waitForSessionState(t, conn, 10*time.Second)
	if started.StartTime == nil {
		t.Fatalf("broadcast state missing start time")
	}
	if started.MaxRoomUnlocked != 1 {
		t.Fatalf("broadcast state room unlock mismatch: %d", started.MaxRoomUnlocked)
	}
}

func dialSessionWS(t *testing.T, wsBase, token string) *websocket.Conn {
	t.Helper()

	u, err := url.Parse(wsBase)
	if err != nil {
		t.Fatalf("invalid WS url: %v", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn
}

func waitForSessionState(t *testing.T, conn *websocket.Conn, timeout time.Duration) sessionState {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg wsmsg.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read ws message failed: %v", err)
		}

		if msg.Type == wsmsg.TypeSessionState {
			var payload wsmsg.SessionStatePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				t.Fatalf("decode session_state payload: %v", err)
			}
			var state sessionState
			if err := json.Unmarshal(payload.State, &state); err != nil {
				t.Fatalf("decode session state: %v", err)
			}
			return state
		}
	}
	t.Fatalf("timeout waiting for session_state")
	return sessionState{}
}
