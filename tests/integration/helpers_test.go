//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
)

type sessionState struct {
	TeamName        string  `json:"teamName"`
	StartTime       *string `json:"startTime"`
	EndTime         *string `json:"endTime"`
	Score           int     `json:"score"`
	AnsweredDoorIDs []int   `json:"answeredDoorIds"`
	MaxRoomUnlocked int     `json:"maxRoomUnlocked"`
}

type sessionInfo struct {
	Token string
	State sessionState
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func createSession(t *testing.T, baseURL, teamName string) sessionInfo {
	t.Helper()

	body, err := json.Marshal(map[string]string{"teamName": teamName})
	if err != nil {
		t.Fatalf("marshal session payload: %v", err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/sessions", baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create session request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected session response status: %d", resp.StatusCode)
	}

	var out struct {
		Token   string       `json:"token"`
		Session sessionState `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode session response failed: %v", err)
	}

	if out.Token == "" {
		t.Fatalf("empty token in session response")
	}

	return sessionInfo{Token: out.Token, State: out.Session}
}

// postIntent sends a session intent and decodes the response body into out
// (pass nil to discard).
func postIntent(t *testing.T, baseURL, token, path string, payload, out any) int {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal intent payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, body)
	if err != nil {
		t.Fatalf("build intent request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("intent request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode intent response failed: %v", err)
		}
	}
	return resp.StatusCode
}

func getState(t *testing.T, baseURL, token string) sessionState {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/sessions/me", nil)
	if err != nil {
		t.Fatalf("build state request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("state request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected state response status: %d", resp.StatusCode)
	}

	var state sessionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state failed: %v", err)
	}
	return state
}
