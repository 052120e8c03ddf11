// Package sqlite records pipeline stage executions in a local SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Recorder implements interfaces.ExecutionRecorder
type Recorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *common.Logger
}

// NewRecorder opens (or creates) the database at path and runs migrations
func NewRecorder(path string, logger *common.Logger) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create recorder dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the CLI read history while a scheduled sweep writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &Recorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Execution recorder opened")
	return r, nil
}

func (r *Recorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stage_executions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			stage       TEXT NOT NULL,
			status      TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			error       TEXT,
			executed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stage_run ON stage_executions(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stage_user ON stage_executions(user_id, executed_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordExecution appends one stage execution
func (r *Recorder) RecordExecution(ctx context.Context, exec *models.StageExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	executedAt := exec.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_executions (run_id, user_id, stage, status, duration_ms, error, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exec.RunID, exec.UserID, exec.Stage, exec.Status, exec.Duration.Milliseconds(), exec.Error, executedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert stage execution: %w", err)
	}
	return nil
}

// ListExecutions returns the executions of one run in insertion order
func (r *Recorder) ListExecutions(ctx context.Context, runID string) ([]*models.StageExecution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, user_id, stage, status, duration_ms, COALESCE(error, ''), executed_at
		 FROM stage_executions WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stage executions: %w", err)
	}
	defer rows.Close()

	var result []*models.StageExecution
	for rows.Next() {
		var e models.StageExecution
		var durationMS, executedAt int64
		if err := rows.Scan(&e.RunID, &e.UserID, &e.Stage, &e.Status, &durationMS, &e.Error, &executedAt); err != nil {
			return nil, fmt.Errorf("scan stage execution: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.ExecutedAt = time.UnixMilli(executedAt)
		result = append(result, &e)
	}
	return result, rows.Err()
}

// Close closes the database
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Compile-time check
var _ interfaces.ExecutionRecorder = (*Recorder)(nil)
