package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/linkedin-connector/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                 UUID PRIMARY KEY,
	search_url         TEXT NOT NULL,
	profiles_observed  INTEGER NOT NULL DEFAULT 0,
	actions_completed  INTEGER NOT NULL DEFAULT 0,
	pages_visited      INTEGER NOT NULL DEFAULT 0,
	failures           INTEGER NOT NULL DEFAULT 0,
	termination        TEXT NOT NULL DEFAULT '',
	started_at         TIMESTAMPTZ NOT NULL,
	finished_at        TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS connection_attempts (
	id            BIGSERIAL PRIMARY KEY,
	run_id        UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	page          INTEGER NOT NULL,
	position      INTEGER NOT NULL,
	subtitle      TEXT NOT NULL DEFAULT '',
	first_name    TEXT NOT NULL DEFAULT '',
	profile_url   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	attempted_at  TIMESTAMPTZ NOT NULL
);

ALTER TABLE connection_attempts ADD COLUMN IF NOT EXISTS profile_url TEXT NOT NULL DEFAULT '';
ALTER TABLE connection_attempts ADD COLUMN IF NOT EXISTS error TEXT NOT NULL DEFAULT '';
`

// RunRepoImpl provides a concrete implementation for the RunRepository interface using PostgreSQL.
type RunRepoImpl struct {
	db *pgxpool.Pool
}

// NewRunRepo creates a new instance of RunRepoImpl.
func NewRunRepo(db *pgxpool.Pool) *RunRepoImpl {
	return &RunRepoImpl{db: db}
}

// EnsureSchema creates the history tables if they do not exist yet.
func (r *RunRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

// SaveRun stores or updates the summary row of a run.
func (r *RunRepoImpl) SaveRun(ctx context.Context, run *entity.RunRecord) error {
	query := `
		INSERT INTO runs (id, search_url, profiles_observed, actions_completed, pages_visited, failures, termination, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			profiles_observed = EXCLUDED.profiles_observed,
			actions_completed = EXCLUDED.actions_completed,
			pages_visited = EXCLUDED.pages_visited,
			failures = EXCLUDED.failures,
			termination = EXCLUDED.termination,
			finished_at = EXCLUDED.finished_at;
	`
	var finishedAt *time.Time
	if !run.FinishedAt.IsZero() {
		finishedAt = &run.FinishedAt
	}

	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.SearchURL,
		run.ProfilesObserved,
		run.ActionsCompleted,
		run.PagesVisited,
		run.Failures,
		run.Termination,
		run.StartedAt,
		finishedAt,
	)
	return err
}

// SaveAttempt appends the outcome of one candidate evaluation.
func (r *RunRepoImpl) SaveAttempt(ctx context.Context, attempt *entity.ConnectionAttempt) error {
	query := `
		INSERT INTO connection_attempts (run_id, page, position, subtitle, first_name, profile_url, status, reason, error, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id;
	`
	return r.db.QueryRow(ctx, query,
		attempt.RunID,
		attempt.Page,
		attempt.Position,
		attempt.Subtitle,
		attempt.FirstName,
		attempt.ProfileURL,
		string(attempt.Status),
		attempt.Reason,
		attempt.Error,
		attempt.AttemptedAt,
	).Scan(&attempt.ID)
}

// Ping checks the connection.
func (r *RunRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
