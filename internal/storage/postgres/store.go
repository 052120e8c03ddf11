// Package postgres implements the snapshot store over an existing Postgres schema
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

const (
	accountsQuery = `
		SELECT id, name, account_type, balance, COALESCE(currency, 'USD'), is_active
		FROM accounts
		WHERE user_id = $1
		ORDER BY id`

	transactionsQuery = `
		SELECT id, account_id, amount, date, COALESCE(category, ''), COALESCE(description, ''), is_pending
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, id ASC`

	budgetsQuery = `
		SELECT id, category, amount, current_spent, is_active
		FROM budgets
		WHERE user_id = $1
		ORDER BY id`

	goalsQuery = `
		SELECT id, name, target_amount, current_amount, target_date, is_active
		FROM goals
		WHERE user_id = $1
		ORDER BY id`
)

// schema is the minimal read contract. Deployments that already own these
// tables never need Migrate.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL DEFAULT '',
		balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		currency TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		category TEXT,
		description TEXT,
		is_pending BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)`,
	`CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		current_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		target_amount DOUBLE PRECISION NOT NULL,
		current_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		target_date TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

// Store implements interfaces.SnapshotStore on database/sql
type Store struct {
	db     *sql.DB
	logger *common.Logger
}

// Open connects with lib/pq and verifies the connection
func Open(ctx context.Context, dsn string, logger *common.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logger.Info().Msg("Postgres snapshot store initialized")
	return NewStore(db, logger), nil
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB, logger *common.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates the read-contract tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// GetSnapshotInputs reads a user's accounts, budgets, goals and the transactions inside window
func (s *Store) GetSnapshotInputs(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error) {
	in := &models.SnapshotInputs{}

	if err := s.each(ctx, accountsQuery, []any{userID}, func(rows *sql.Rows) error {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.IsActive); err != nil {
			return err
		}
		in.Accounts = append(in.Accounts, a)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	if err := s.each(ctx, transactionsQuery, []any{userID, window.From, window.To}, func(rows *sql.Rows) error {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Date, &t.Category, &t.Description, &t.IsPending); err != nil {
			return err
		}
		in.Transactions = append(in.Transactions, t)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	if err := s.each(ctx, budgetsQuery, []any{userID}, func(rows *sql.Rows) error {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Amount, &b.Spent, &b.IsActive); err != nil {
			return err
		}
		in.Budgets = append(in.Budgets, b)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to read budgets: %w", err)
	}

	if err := s.each(ctx, goalsQuery, []any{userID}, func(rows *sql.Rows) error {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.IsActive); err != nil {
			return err
		}
		in.Goals = append(in.Goals, g)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("accounts", len(in.Accounts)).
		Int("transactions", len(in.Transactions)).
		Msg("Snapshot inputs read")

	return in, nil
}

// each runs query and calls scan once per row
func (s *Store) each(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Compile-time check
var _ interfaces.SnapshotStore = (*Store)(nil)
