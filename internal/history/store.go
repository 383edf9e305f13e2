// Package history persists one row per gateway invocation so operators can
// audit what ran, against which workspace, and with what outcome. Diagnostic
// text is truncated on write; full artifacts live in the workspace itself.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// maxDiagnosticBytes caps stored stdout/stderr per run.
const maxDiagnosticBytes = 16 * 1024

// Run is one recorded invocation.
type Run struct {
	ID           string        `json:"id"`
	Tool         string        `json:"tool"`
	Engine       string        `json:"engine"`
	Status       string        `json:"status"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	Message      string        `json:"message"`
	WorkspaceKey string        `json:"workspace_key,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Stdout       string        `json:"stdout,omitempty"`
	Stderr       string        `json:"stderr,omitempty"`
}

// Store reads and writes the run log.
type Store struct {
	db *sql.DB
}

var _ gateway.Recorder = (*Store)(nil)

// NewStore creates a Store over an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts one invocation record.
func (s *Store) Record(ctx context.Context, rec gateway.InvocationRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("invocation id is empty")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO run_log(
  id, tool, engine, status, error_kind, message, workspace_key,
  started_at, duration_ms, stdout, stderr
)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		rec.ID, rec.Tool, rec.Engine, rec.Status, rec.ErrorKind, rec.Message,
		rec.WorkspaceKey, rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.Duration.Milliseconds(),
		truncate(rec.Stdout), truncate(rec.Stderr))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, tool, engine, status, error_kind, message, workspace_key,
       started_at, duration_ms, stdout, stderr
FROM run_log
ORDER BY started_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run by id, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, tool, engine, status, error_kind, message, workspace_key,
       started_at, duration_ms, stdout, stderr
FROM run_log
WHERE id = ?;
`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Prune deletes runs older than retention.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive")
	}
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx, `DELETE FROM run_log WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		durationMS int64
	)
	err := row.Scan(&run.ID, &run.Tool, &run.Engine, &run.Status, &run.ErrorKind,
		&run.Message, &run.WorkspaceKey, &startedAt, &durationMS, &run.Stdout, &run.Stderr)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func truncate(s string) string {
	if len(s) > maxDiagnosticBytes {
		return s[:maxDiagnosticBytes]
	}
	return s
}
