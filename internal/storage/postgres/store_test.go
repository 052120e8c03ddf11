package postgres

import (
	"context"
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	tcommon "github.com/VikhyatChoppa18/PersonFinAdvisor/tests/common"
)

func TestGetSnapshotInputs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	posted := time.Date(2025, 6, 3, 18, 30, 0, 0, time.UTC)
	target := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(accountsQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "account_type", "balance", "currency", "is_active"}).
			AddRow("chk", "Checking", "checking", 2500.0, "USD", true).
			AddRow("sav", "Savings", "savings", 500.0, "USD", false))

	mock.ExpectQuery(regexp.QuoteMeta(transactionsQuery)).
		WithArgs("user1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "date", "category", "description", "is_pending"}).
			AddRow("t1", "chk", -120.5, posted, "Food & Dining", "Groceries", true))

	mock.ExpectQuery(regexp.QuoteMeta(budgetsQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category", "amount", "current_spent", "is_active"}).
			AddRow("b1", "Food & Dining", 600.0, 650.0, true))

	mock.ExpectQuery(regexp.QuoteMeta(goalsQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "target_amount", "current_amount", "target_date", "is_active"}).
			AddRow("g1", "Emergency Fund", 10000.0, 6000.0, target, true))

	store := NewStore(db, common.NewSilentLogger())
	in, err := store.GetSnapshotInputs(context.Background(), "user1", models.Window{
		From: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, in.Accounts, 2)
	assert.Equal(t, "checking", in.Accounts[0].Type)
	assert.False(t, in.Accounts[1].IsActive)

	require.Len(t, in.Transactions, 1)
	assert.Equal(t, -120.5, in.Transactions[0].Amount)
	assert.True(t, in.Transactions[0].Date.Equal(posted))
	assert.True(t, in.Transactions[0].IsPending)

	require.Len(t, in.Budgets, 1)
	assert.Equal(t, 650.0, in.Budgets[0].Spent)

	require.Len(t, in.Goals, 1)
	assert.True(t, in.Goals[0].TargetDate.Equal(target))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSnapshotInputs_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(accountsQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "account_type", "balance", "currency", "is_active"}))

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(transactionsQuery)).
		WithArgs("user1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(boom)

	store := NewStore(db, common.NewSilentLogger())
	_, err = store.GetSnapshotInputs(context.Background(), "user1", models.Window{To: time.Now()})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to read transactions")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSnapshotInputs_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(accountsQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "account_type", "balance", "currency", "is_active"}).
			AddRow("chk", "Checking", "checking", "not-a-number", "USD", true))

	store := NewStore(db, common.NewSilentLogger())
	_, err = store.GetSnapshotInputs(context.Background(), "user1", models.Window{To: time.Now()})
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, NewStore(db, common.NewSilentLogger()).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Container round trip; only runs when ADVISOR_TEST_POSTGRES=true
func TestStore_Postgres(t *testing.T) {
	if os.Getenv("ADVISOR_TEST_POSTGRES") != "true" {
		t.Skip("set ADVISOR_TEST_POSTGRES=true to run Postgres container tests")
	}

	pc := tcommon.StartPostgres(t)
	ctx := context.Background()

	store, err := Open(ctx, pc.DSN(), common.NewSilentLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Migrate(ctx))

	_, err = store.db.ExecContext(ctx, `INSERT INTO accounts (id, user_id, name, account_type, balance) VALUES ('pg_chk', 'pguser', 'Checking', 'checking', 1200)`)
	require.NoError(t, err)
	_, err = store.db.ExecContext(ctx, `INSERT INTO transactions (id, user_id, account_id, amount, date) VALUES
		('pg_t1', 'pguser', 'pg_chk', 3000, '2025-06-01T09:00:00Z'),
		('pg_t2', 'pguser', 'pg_chk', -45.25, '2025-04-01T09:00:00Z')`)
	require.NoError(t, err)

	in, err := store.GetSnapshotInputs(ctx, "pguser", models.Window{
		From: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, in.Accounts, 1)
	assert.Equal(t, "USD", in.Accounts[0].Currency)
	require.Len(t, in.Transactions, 1)
	assert.Equal(t, "", in.Transactions[0].Category)
	assert.Equal(t, 3000.0, in.Transactions[0].Amount)
}
