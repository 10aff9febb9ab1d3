package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/internal/game"
	"github.com/fragmentforge/escape-api/pkg/http/ws"
)

// BankProvider hands the manager the current question bank (implemented by
// question.Service).
type BankProvider interface {
	Bank() []game.Question
}

// Archiver persists completed sessions for reporting (implemented by
// archive.Repository). Best-effort: errors are logged, never surfaced.
type Archiver interface {
	ArchiveSession(ctx context.Context, id uuid.UUID, export game.Export) error
}

// ScoreRecorder records a finished team on the leaderboard (implemented by
// leaderboard.Service).
type ScoreRecorder interface {
	RecordScore(ctx context.Context, sessionID uuid.UUID, teamName string, score int, completedAt time.Time) error
}

// ManagerOptions carries the optional collaborators around the core engine.
type ManagerOptions struct {
	Archiver Archiver
	Scores   ScoreRecorder
	Hub      *ws.Hub
}

// Manager owns every live session and is the only path through which
// session state changes. Each session is guarded by its own exclusive lock;
// transitions are applied synchronously and persisted best-effort after
// every change. Unknown ids resolve to the persisted blob when one exists
// and to the empty default session otherwise, so a stale token never
// errors, it just starts over.
type Manager struct {
	store    Store
	bank     BankProvider
	archiver Archiver
	scores   ScoreRecorder
	hub      *ws.Hub
	logger   zerolog.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	mu     sync.Mutex
	loaded bool
	sess   *game.Session
}

// NewManager creates a session manager.
func NewManager(store Store, bank BankProvider, opts ManagerOptions, logger zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		bank:     bank,
		archiver: opts.Archiver,
		scores:   opts.Scores,
		hub:      opts.Hub,
		logger:   logger.With().Str("component", "session").Logger(),
		entries:  make(map[uuid.UUID]*entry),
	}
}

// Create allocates a fresh empty session and returns its id.
func (m *Manager) Create(ctx context.Context) (uuid.UUID, *game.Session) {
	id := uuid.New()

	m.mu.Lock()
	m.entries[id] = &entry{loaded: true, sess: game.NewSession()}
	m.mu.Unlock()

	return id, m.Get(ctx, id)
}

// Get returns a snapshot of the session's current state.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) *game.Session {
	e := m.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	m.ensureLoaded(ctx, id, e)
	return e.sess.Clone()
}

// SetTeamName replaces the team name and returns the new state.
func (m *Manager) SetTeamName(ctx context.Context, id uuid.UUID, name string) *game.Session {
	return m.transition(ctx, id, func(s *game.Session) {
		s.SetTeamName(name)
	})
}

// Start (re)initializes active play for the session.
func (m *Manager) Start(ctx context.Context, id uuid.UUID) *game.Session {
	snapshot := m.transition(ctx, id, func(s *game.Session) {
		s.Start(time.Now().UTC())
	})
	metricSessionsStarted.Inc()
	return snapshot
}

// Answer applies a door answer. Rejected answers (duplicates, unknown
// doors, bank not loaded) are silent no-ops; the bool reports whether the
// answer was recorded.
func (m *Manager) Answer(ctx context.Context, id uuid.UUID, room, door, globalIndex, selectedIndex int) (*game.Session, bool) {
	accepted := false
	snapshot := m.transition(ctx, id, func(s *game.Session) {
		accepted = s.Answer(room, door, globalIndex, selectedIndex, m.bank.Bank())
	})

	switch {
	case !accepted:
		metricAnswers.WithLabelValues(outcomeRejected).Inc()
	case snapshot.Answers[len(snapshot.Answers)-1].Correct:
		metricAnswers.WithLabelValues(outcomeCorrect).Inc()
	default:
		metricAnswers.WithLabelValues(outcomeWrong).Inc()
	}
	return snapshot, accepted
}

// Finish stamps the end time (one-shot). When the session has answered
// every door, the exported document is archived and the team's score is
// recorded on the leaderboard, both best-effort.
func (m *Manager) Finish(ctx context.Context, id uuid.UUID) *game.Session {
	var ended bool
	snapshot := m.transition(ctx, id, func(s *game.Session) {
		before := s.EndTime
		s.Finish(time.Now().UTC())
		ended = before == nil && s.EndTime != nil
	})

	if ended && snapshot.Complete() {
		metricSessionsCompleted.Inc()
		m.recordCompletion(ctx, id, snapshot)
	}
	return snapshot
}

// Reset clears the session back to the empty default and drops the
// persisted blob.
func (m *Manager) Reset(ctx context.Context, id uuid.UUID) *game.Session {
	e := m.entryFor(id)
	e.mu.Lock()
	e.loaded = true
	e.sess = game.NewSession()
	snapshot := e.sess.Clone()
	e.mu.Unlock()

	if err := m.store.Clear(ctx, id); err != nil {
		m.logger.Warn().Err(err).Str("session_id", id.String()).Msg("session clear failed")
	}
	m.broadcast(id, ws.TypeSessionReset, snapshot)
	return snapshot
}

// IsDoorAnswered reports whether the door was answered in this session.
func (m *Manager) IsDoorAnswered(ctx context.Context, id uuid.UUID, globalIndex int) bool {
	return m.Get(ctx, id).IsDoorAnswered(globalIndex)
}

// Export produces the downloadable results document.
func (m *Manager) Export(ctx context.Context, id uuid.UUID) game.Export {
	return m.Get(ctx, id).Export()
}

// transition applies fn under the session's lock, persists best-effort and
// broadcasts the new state. It returns a snapshot of the result.
func (m *Manager) transition(ctx context.Context, id uuid.UUID, fn func(*game.Session)) *game.Session {
	e := m.entryFor(id)
	e.mu.Lock()
	m.ensureLoaded(ctx, id, e)
	fn(e.sess)
	snapshot := e.sess.Clone()
	e.mu.Unlock()

	if err := m.store.Save(ctx, id, snapshot); err != nil {
		// Persistence is a side channel; play continues in memory.
		metricPersistFailures.Inc()
		m.logger.Warn().Err(err).Str("session_id", id.String()).Msg("session save failed")
	}
	m.broadcast(id, ws.TypeSessionState, snapshot)
	return snapshot
}

func (m *Manager) entryFor(id uuid.UUID) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		e = &entry{}
		m.entries[id] = e
	}
	return e
}

// ensureLoaded hydrates the entry from the store on first access. Callers
// hold e.mu.
func (m *Manager) ensureLoaded(ctx context.Context, id uuid.UUID, e *entry) {
	if e.loaded {
		return
	}
	e.loaded = true
	e.sess = game.NewSession()

	sess, err := m.store.Load(ctx, id)
	if err != nil {
		m.logger.Warn().Err(err).Str("session_id", id.String()).Msg("session load failed, starting empty")
		return
	}
	if sess != nil {
		e.sess = sess
	}
}

func (m *Manager) recordCompletion(ctx context.Context, id uuid.UUID, snapshot *game.Session) {
	export := snapshot.Export()

	if m.archiver != nil {
		if err := m.archiver.ArchiveSession(ctx, id, export); err != nil {
			m.logger.Warn().Err(err).Str("session_id", id.String()).Msg("session archive failed")
		}
	}
	if m.scores != nil && snapshot.EndTime != nil {
		if err := m.scores.RecordScore(ctx, id, snapshot.TeamName, snapshot.Score, *snapshot.EndTime); err != nil {
			m.logger.Warn().Err(err).Str("session_id", id.String()).Msg("leaderboard record failed")
		}
	}
	if m.hub != nil {
		payload, err := json.Marshal(ws.SessionCompletePayload{
			SessionID:  id.String(),
			TeamName:   snapshot.TeamName,
			TotalScore: snapshot.Score,
		})
		if err == nil {
			m.hub.BroadcastToSession(id, ws.Message{Type: ws.TypeSessionComplete, Payload: payload})
		}
	}
}

func (m *Manager) broadcast(id uuid.UUID, msgType string, snapshot *game.Session) {
	if m.hub == nil {
		return
	}
	state, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	payload, err := json.Marshal(ws.SessionStatePayload{
		SessionID: id.String(),
		State:     state,
	})
	if err != nil {
		return
	}
	m.hub.BroadcastToSession(id, ws.Message{Type: msgType, Payload: payload})
}
