package interfaces

import (
	"context"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// SnapshotStore is the read-only contract the engine needs from persistence.
// Transactions are limited to the window; accounts, budgets and goals are returned in full.
type SnapshotStore interface {
	GetSnapshotInputs(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error)
	Close() error
}

// ExecutionRecorder persists pipeline stage executions
type ExecutionRecorder interface {
	RecordExecution(ctx context.Context, exec *models.StageExecution) error
	ListExecutions(ctx context.Context, runID string) ([]*models.StageExecution, error)
	Close() error
}

// SnapshotWriter is implemented by stores that accept imported finance records
type SnapshotWriter interface {
	SaveSnapshotInputs(ctx context.Context, userID string, in *models.SnapshotInputs) error
	// DeleteUser removes every record of userID and returns how many were deleted
	DeleteUser(ctx context.Context, userID string) (int, error)
}
