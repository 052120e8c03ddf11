// Package surrealdb implements the snapshot store on SurrealDB
package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Tables holding per-user finance records. Every row carries user_id.
var tables = []string{"account", "txn", "budget", "goal"}

// Field lists alias the stored ids back to id for struct mapping
const (
	accountSelectFields     = "account_id as id, name, account_type as type, balance, currency, is_active"
	transactionSelectFields = "txn_id as id, account_id, amount, posted_at as date, category, description, is_pending"
	budgetSelectFields      = "budget_id as id, category, amount, current_spent, is_active"
	goalSelectFields        = "goal_id as id, name, target_amount, current_amount, target_date, is_active"
)

// Store implements interfaces.SnapshotStore using SurrealDB
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewStore connects to SurrealDB and makes sure the finance tables exist
func NewStore(ctx context.Context, cfg common.StorageConfig, logger *common.Logger) (*Store, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := NewStoreWithDB(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB snapshot store initialized")

	return s, nil
}

// NewStoreWithDB wraps an already connected database
func NewStoreWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	// SurrealDB v3 errors on querying tables that were never defined
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}
	return &Store{db: db, logger: logger}, nil
}

// recordID keys a row on [user_id, id] so ids from different users never collide
func recordID(table, userID, id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(table, []any{userID, id})
}

// GetSnapshotInputs reads a user's accounts, budgets, goals and the transactions inside window
func (s *Store) GetSnapshotInputs(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error) {
	vars := map[string]any{"user_id": userID}

	accounts, err := queryAll[models.Account](ctx, s.db,
		"SELECT "+accountSelectFields+" FROM account WHERE user_id = $user_id ORDER BY id", vars)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	budgets, err := queryAll[models.Budget](ctx, s.db,
		"SELECT "+budgetSelectFields+" FROM budget WHERE user_id = $user_id ORDER BY id", vars)
	if err != nil {
		return nil, fmt.Errorf("failed to read budgets: %w", err)
	}

	goals, err := queryAll[models.Goal](ctx, s.db,
		"SELECT "+goalSelectFields+" FROM goal WHERE user_id = $user_id ORDER BY id", vars)
	if err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}

	txnVars := map[string]any{
		"user_id": userID,
		"from":    window.From.UTC(),
		"to":      window.To.UTC(),
	}
	transactions, err := queryAll[models.Transaction](ctx, s.db,
		"SELECT "+transactionSelectFields+" FROM txn WHERE user_id = $user_id AND posted_at >= $from AND posted_at < $to ORDER BY date ASC", txnVars)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("accounts", len(accounts)).
		Int("transactions", len(transactions)).
		Int("budgets", len(budgets)).
		Int("goals", len(goals)).
		Msg("Snapshot inputs read")

	return &models.SnapshotInputs{
		Accounts:     accounts,
		Transactions: transactions,
		Budgets:      budgets,
		Goals:        goals,
	}, nil
}

func queryAll[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// SaveSnapshotInputs upserts every record in in for userID
func (s *Store) SaveSnapshotInputs(ctx context.Context, userID string, in *models.SnapshotInputs) error {
	for i := range in.Accounts {
		if err := s.PutAccount(ctx, userID, &in.Accounts[i]); err != nil {
			return err
		}
	}
	for i := range in.Transactions {
		if err := s.PutTransaction(ctx, userID, &in.Transactions[i]); err != nil {
			return err
		}
	}
	for i := range in.Budgets {
		if err := s.PutBudget(ctx, userID, &in.Budgets[i]); err != nil {
			return err
		}
	}
	for i := range in.Goals {
		if err := s.PutGoal(ctx, userID, &in.Goals[i]); err != nil {
			return err
		}
	}
	return nil
}

// PutAccount upserts an account
func (s *Store) PutAccount(ctx context.Context, userID string, a *models.Account) error {
	sql := `UPSERT $rid SET
		user_id = $user_id, account_id = $account_id, name = $name, account_type = $account_type,
		balance = $balance, currency = $currency, is_active = $is_active`
	vars := map[string]any{
		"rid":          recordID("account", userID, a.ID),
		"user_id":      userID,
		"account_id":   a.ID,
		"name":         a.Name,
		"account_type": a.Type,
		"balance":      a.Balance,
		"currency":     a.Currency,
		"is_active":    a.IsActive,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to put account: %w", err)
	}
	return nil
}

// PutTransaction upserts a transaction. Dates are stored in UTC.
func (s *Store) PutTransaction(ctx context.Context, userID string, t *models.Transaction) error {
	sql := `UPSERT $rid SET
		user_id = $user_id, txn_id = $txn_id, account_id = $account_id, amount = $amount,
		posted_at = $posted_at, category = $category, description = $description, is_pending = $is_pending`
	vars := map[string]any{
		"rid":         recordID("txn", userID, t.ID),
		"user_id":     userID,
		"txn_id":      t.ID,
		"account_id":  t.AccountID,
		"amount":      t.Amount,
		"posted_at":   t.Date.UTC(),
		"category":    t.Category,
		"description": t.Description,
		"is_pending":  t.IsPending,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to put transaction: %w", err)
	}
	return nil
}

// PutBudget upserts a budget
func (s *Store) PutBudget(ctx context.Context, userID string, b *models.Budget) error {
	sql := `UPSERT $rid SET
		user_id = $user_id, budget_id = $budget_id, category = $category, amount = $amount,
		current_spent = $current_spent, is_active = $is_active`
	vars := map[string]any{
		"rid":           recordID("budget", userID, b.ID),
		"user_id":       userID,
		"budget_id":     b.ID,
		"category":      b.Category,
		"amount":        b.Amount,
		"current_spent": b.Spent,
		"is_active":     b.IsActive,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to put budget: %w", err)
	}
	return nil
}

// PutGoal upserts a goal
func (s *Store) PutGoal(ctx context.Context, userID string, g *models.Goal) error {
	sql := `UPSERT $rid SET
		user_id = $user_id, goal_id = $goal_id, name = $name, target_amount = $target_amount,
		current_amount = $current_amount, target_date = $target_date, is_active = $is_active`
	vars := map[string]any{
		"rid":            recordID("goal", userID, g.ID),
		"user_id":        userID,
		"goal_id":        g.ID,
		"name":           g.Name,
		"target_amount":  g.TargetAmount,
		"current_amount": g.CurrentAmount,
		"target_date":    g.TargetDate.UTC(),
		"is_active":      g.IsActive,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to put goal: %w", err)
	}
	return nil
}

// DeleteUser removes every finance record belonging to userID
func (s *Store) DeleteUser(ctx context.Context, userID string) (int, error) {
	total := 0
	for _, table := range tables {
		sql := fmt.Sprintf("DELETE FROM %s WHERE user_id = $user_id RETURN BEFORE", table)
		results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, map[string]any{"user_id": userID})
		if err != nil {
			return total, fmt.Errorf("failed to delete %s records: %w", table, err)
		}
		if results != nil && len(*results) > 0 {
			total += len((*results)[0].Result)
		}
	}
	return total, nil
}

// Close closes the connection
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Close(ctx)
}

// Compile-time check
var (
	_ interfaces.SnapshotStore  = (*Store)(nil)
	_ interfaces.SnapshotWriter = (*Store)(nil)
)
