package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// ErrImportUnsupported is returned when the configured store is read-only
var ErrImportUnsupported = errors.New("snapshot store does not support imports")

// ImportResult counts the records written by an import
type ImportResult struct {
	UserID       string `json:"user_id"`
	Accounts     int    `json:"accounts"`
	Transactions int    `json:"transactions"`
	Budgets      int    `json:"budgets"`
	Goals        int    `json:"goals"`
	Replaced     int    `json:"replaced,omitempty"`
}

// ImportInputsFromFile reads a SnapshotInputs JSON document and upserts it for userID.
// Inputs that break the non-negative amount contract are rejected before anything is written.
// With replace set the user's existing records are deleted first.
func (a *App) ImportInputsFromFile(ctx context.Context, userID, filePath string, replace bool) (*ImportResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs file %s: %w", filePath, err)
	}

	var in models.SnapshotInputs
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse inputs file %s: %w", filePath, err)
	}
	return a.ImportInputs(ctx, userID, &in, replace)
}

// ImportInputs upserts in for userID through the configured store
func (a *App) ImportInputs(ctx context.Context, userID string, in *models.SnapshotInputs, replace bool) (*ImportResult, error) {
	writer, ok := a.Store.(interfaces.SnapshotWriter)
	if !ok {
		return nil, ErrImportUnsupported
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("import for %s: %w", userID, err)
	}

	var replaced int
	if replace {
		n, err := writer.DeleteUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("clear records for %s: %w", userID, err)
		}
		replaced = n
	}

	if err := writer.SaveSnapshotInputs(ctx, userID, in); err != nil {
		return nil, fmt.Errorf("import for %s: %w", userID, err)
	}

	result := &ImportResult{
		UserID:       userID,
		Replaced:     replaced,
		Accounts:     len(in.Accounts),
		Transactions: len(in.Transactions),
		Budgets:      len(in.Budgets),
		Goals:        len(in.Goals),
	}
	a.Logger.Info().
		Str("user_id", userID).
		Int("accounts", result.Accounts).
		Int("transactions", result.Transactions).
		Int("budgets", result.Budgets).
		Int("goals", result.Goals).
		Int("replaced", result.Replaced).
		Msg("Snapshot inputs imported")
	return result, nil
}
