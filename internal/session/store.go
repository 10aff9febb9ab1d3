package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/internal/game"
)

// Store is the persistence capability injected into the Manager: a keyed
// byte blob with get/set/clear semantics. Failures are the caller's problem
// only to log — a session must keep playing in memory when its store is
// down.
type Store interface {
	// Load returns the persisted session, or nil when none exists.
	Load(ctx context.Context, id uuid.UUID) (*game.Session, error)
	Save(ctx context.Context, id uuid.UUID, s *game.Session) error
	Clear(ctx context.Context, id uuid.UUID) error
}

const defaultSessionTTL = 7 * 24 * time.Hour

// RedisStore persists sessions as JSON blobs, one fixed key per session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("fragmentforge:session:%s", id.String())
}

func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*game.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess game.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt blob falls back to the empty default rather than
		// blocking play.
		s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("discarding unparseable session blob")
		return nil, nil
	}
	sess.Normalize()
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, id uuid.UUID, sess *game.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(id), data, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}
