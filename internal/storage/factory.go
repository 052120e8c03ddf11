// Package storage selects the snapshot store and execution recorder from configuration
package storage

import (
	"context"
	"fmt"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/storage/postgres"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/storage/sqlite"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/storage/surrealdb"
)

// Driver constants.
const (
	DriverSurrealDB = "surrealdb"
	DriverPostgres  = "postgres"
)

// NewSnapshotStore opens the snapshot store named by config.Driver.
// Supported drivers: "surrealdb" (default), "postgres".
func NewSnapshotStore(ctx context.Context, config common.StorageConfig, logger *common.Logger) (interfaces.SnapshotStore, error) {
	driver := config.Driver
	if driver == "" {
		driver = DriverSurrealDB
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetTimeout())
	defer cancel()

	switch driver {
	case DriverSurrealDB:
		return surrealdb.NewStore(ctx, config, logger)

	case DriverPostgres:
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires storage.dsn")
		}
		return postgres.Open(ctx, config.DSN, logger)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: surrealdb, postgres)", driver)
	}
}

// NewExecutionRecorder opens the SQLite execution log. An empty path disables
// recording and returns nil.
func NewExecutionRecorder(config common.RecorderConfig, logger *common.Logger) (interfaces.ExecutionRecorder, error) {
	if config.Path == "" {
		return nil, nil
	}
	return sqlite.NewRecorder(config.Path, logger)
}
