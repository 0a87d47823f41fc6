package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/aetherhq/prdgen/pkg/prd"
)

// DefaultRetention is how long persisted snapshots are kept before the
// sweeper removes them. Retention is policy, not a correctness requirement.
const DefaultRetention = 7 * 24 * time.Hour

// LibSQLStore implements Store using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db        *sql.DB
	retention time.Duration
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string, retention time.Duration) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}
	return &LibSQLStore{db: db, retention: retention}, nil
}

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// SaveSnapshot writes the run's latest pointer and appends the history row
// in one transaction, so a partially written snapshot is never visible.
func (s *LibSQLStore) SaveSnapshot(ctx context.Context, snap *prd.Snapshot) error {
	expiresAt := snap.CreatedAt.Add(s.retention)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return prd.NewError(prd.ErrCodeStore, "begin snapshot tx").WithRun(snap.RunID).WithCause(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, step, content, revision, diff, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
		   step=excluded.step, content=excluded.content, revision=excluded.revision,
		   diff=excluded.diff, created_at=excluded.created_at, expires_at=excluded.expires_at`,
		snap.RunID, string(snap.Step), snap.Content, snap.Revision, nullStr(snap.Diff), snap.CreatedAt, expiresAt,
	); err != nil {
		return prd.NewError(prd.ErrCodeStore, "save latest snapshot").WithRun(snap.RunID).WithCause(err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, step, content, revision, diff, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID, string(snap.Step), snap.Content, snap.Revision, nullStr(snap.Diff), snap.CreatedAt, expiresAt,
	); err != nil {
		return prd.NewError(prd.ErrCodeStore, "append snapshot history").WithRun(snap.RunID).WithCause(err)
	}

	if err := tx.Commit(); err != nil {
		return prd.NewError(prd.ErrCodeStore, "commit snapshot").WithRun(snap.RunID).WithCause(err)
	}
	return nil
}

// GetSnapshot returns the latest snapshot for the run.
func (s *LibSQLStore) GetSnapshot(ctx context.Context, runID string) (*prd.Snapshot, error) {
	snap := &prd.Snapshot{}
	var step string
	var diff sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, step, content, revision, diff, created_at FROM runs WHERE run_id = ?`, runID,
	).Scan(&snap.RunID, &step, &snap.Content, &snap.Revision, &diff, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, prd.NewErrorf(prd.ErrCodeNotFound, "run %q not found", runID).WithRun(runID)
	}
	if err != nil {
		return nil, prd.NewError(prd.ErrCodeStore, "get latest snapshot").WithRun(runID).WithCause(err)
	}
	snap.Step = prd.Step(step)
	if diff.Valid {
		snap.Diff = diff.String
	}
	return snap, nil
}

// History returns every persisted snapshot for the run ordered by revision.
func (s *LibSQLStore) History(ctx context.Context, runID string) ([]prd.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, step, content, revision, diff, created_at
		 FROM snapshots WHERE run_id = ? ORDER BY revision ASC`, runID,
	)
	if err != nil {
		return nil, prd.NewError(prd.ErrCodeStore, "list snapshot history").WithRun(runID).WithCause(err)
	}
	defer rows.Close()

	var out []prd.Snapshot
	for rows.Next() {
		var snap prd.Snapshot
		var step string
		var diff sql.NullString
		if err := rows.Scan(&snap.RunID, &step, &snap.Content, &snap.Revision, &diff, &snap.CreatedAt); err != nil {
			return nil, prd.NewError(prd.ErrCodeStore, "scan snapshot row").WithRun(runID).WithCause(err)
		}
		snap.Step = prd.Step(step)
		if diff.Valid {
			snap.Diff = diff.String
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PurgeExpired deletes rows past their expires_at and returns how many
// snapshot history rows were removed.
func (s *LibSQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	removed, _ := res.RowsAffected()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE expires_at < ?`, now); err != nil {
		return removed, fmt.Errorf("purge runs: %w", err)
	}
	return removed, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
