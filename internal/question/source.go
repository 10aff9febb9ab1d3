package question

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fragmentforge/escape-api/internal/game"
)

// Source delivers the static question bank at startup.
type Source interface {
	Fetch(ctx context.Context) ([]game.Question, error)
}

// FileSource reads the bank from a JSON file on disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) ([]game.Question, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	var bank []game.Question
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("decode bank file: %w", err)
	}
	return bank, nil
}

// HTTPSource fetches the bank from a static URL (e.g. the asset host that
// also serves the browser client its /data/questions.json).
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

func NewHTTPSource(url string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPSource{
		url:        url,
		httpClient: httpClient,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]game.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bank fetch non-200: %d", resp.StatusCode)
	}

	var bank []game.Question
	if err := json.NewDecoder(resp.Body).Decode(&bank); err != nil {
		return nil, err
	}
	return bank, nil
}
