package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/pkg/http/ws"
)

// Supported leaderboard windows.
const (
	WindowDaily   = "daily"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowDaily, WindowAllTime}

// Entry represents one completed session on the board.
type Entry struct {
	SessionID   uuid.UUID `json:"session_id"`
	TeamName    string    `json:"team_name"`
	Score       int       `json:"score"`
	CompletedAt string    `json:"completed_at,omitempty"`
}

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN           int
	PubSubChannel  string
	DailyTTL       time.Duration
	RedisKeyPrefix string
}

// Service keeps per-window standings of completed sessions in Redis sorted
// sets and announces changes over Pub/Sub.
type Service struct {
	redis         *redis.Client
	logger        zerolog.Logger
	topN          int
	pubsubChannel string
	dailyTTL      time.Duration
	prefix        string
}

// NewService constructs a leaderboard service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = "fragmentforge:lb:updates"
	}
	dailyTTL := opts.DailyTTL
	if dailyTTL <= 0 {
		dailyTTL = 48 * time.Hour
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "fragmentforge:lb"
	}

	return &Service{
		redis:         redis,
		logger:        logger.With().Str("component", "leaderboard").Logger(),
		topN:          topN,
		pubsubChannel: channel,
		dailyTTL:      dailyTTL,
		prefix:        prefix,
	}
}

// RecordScore adds a completed session to every window. One entry per
// session: a team playing again enters as a new session, mirroring the
// exported documents.
func (s *Service) RecordScore(ctx context.Context, sessionID uuid.UUID, teamName string, score int, completedAt time.Time) error {
	for _, window := range defaultWindows {
		zKey := s.boardKey(window, completedAt)
		metaKey := s.metaKey(window, completedAt, sessionID)

		pipe := s.redis.TxPipeline()
		pipe.ZAdd(ctx, zKey, redis.Z{Score: float64(score), Member: sessionID.String()})
		pipe.HSet(ctx, metaKey, map[string]interface{}{
			"team_name":    teamName,
			"completed_at": completedAt.UTC().Format(time.RFC3339),
		})
		if window == WindowDaily {
			pipe.Expire(ctx, zKey, s.dailyTTL)
			pipe.Expire(ctx, metaKey, s.dailyTTL)
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("update leaderboard window %s: %w", window, err)
		}
	}

	go s.publishUpdate(context.Background())
	return nil
}

// Top retrieves the top N entries for a window.
func (s *Service) Top(ctx context.Context, window string, limit int) ([]Entry, error) {
	if window != WindowDaily && window != WindowAllTime {
		return nil, fmt.Errorf("unknown window %q", window)
	}
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	now := time.Now()
	zKey := s.boardKey(window, now)
	results, err := s.redis.ZRevRangeWithScores(ctx, zKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		member, _ := z.Member.(string)
		sessionID, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		entry := Entry{SessionID: sessionID, Score: int(z.Score)}

		meta, err := s.redis.HGetAll(ctx, s.metaKey(window, now, sessionID)).Result()
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard metadata")
		} else {
			entry.TeamName = meta["team_name"]
			entry.CompletedAt = meta["completed_at"]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) publishUpdate(ctx context.Context) {
	for _, window := range defaultWindows {
		data, err := json.Marshal(ws.LeaderboardUpdatePayload{Window: window})
		if err != nil {
			continue
		}
		if err := s.redis.Publish(ctx, s.pubsubChannel, data).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish leaderboard update")
		}
	}
}

// boardKey scopes the daily window to its calendar day; all_time is one key.
func (s *Service) boardKey(window string, at time.Time) string {
	if window == WindowDaily {
		return fmt.Sprintf("%s:daily:%s", s.prefix, at.UTC().Format("2006-01-02"))
	}
	return fmt.Sprintf("%s:%s", s.prefix, window)
}

func (s *Service) metaKey(window string, at time.Time, sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:meta:%s", s.boardKey(window, at), sessionID.String())
}
