package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fragmentforge/escape-api/internal/game"
)

// dbtx is the slice of pgxpool.Pool the repository needs.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists completed sessions to Postgres for reporting. Writes
// are idempotent per session id: finishing the same session twice archives
// it once.
type Repository struct {
	db dbtx
}

// NewRepository constructs a completed-session repository.
func NewRepository(db dbtx) *Repository {
	return &Repository{db: db}
}

const insertCompletedSession = `
INSERT INTO completed_sessions (session_id, team_name, started_at, ended_at, total_score, answers)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (session_id) DO NOTHING`

// ArchiveSession stores the exported results document.
func (r *Repository) ArchiveSession(ctx context.Context, id uuid.UUID, export game.Export) error {
	answers, err := json.Marshal(export.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = r.db.Exec(ctx, insertCompletedSession,
		id,
		export.TeamName,
		export.StartTime,
		export.EndTime,
		export.TotalScore,
		answers,
	)
	if err != nil {
		return fmt.Errorf("insert completed session: %w", err)
	}
	return nil
}
