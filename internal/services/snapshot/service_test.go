package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// --- Mocks ---

type mockStore struct {
	getFn      func(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error)
	lastWindow models.Window
}

func (m *mockStore) GetSnapshotInputs(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error) {
	m.lastWindow = window
	if m.getFn != nil {
		return m.getFn(ctx, userID, window)
	}
	return &models.SnapshotInputs{}, nil
}

func (m *mockStore) Close() error { return nil }

func inputs(in *models.SnapshotInputs) *mockStore {
	return &mockStore{getFn: func(context.Context, string, models.Window) (*models.SnapshotInputs, error) {
		return in, nil
	}}
}

var testNow = time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

func defaultConfig() common.SnapshotConfig {
	return common.SnapshotConfig{MinTransactions: 5, RequireIncome: true, FallbackDays: 30}
}

func newTestService(store *mockStore, cfg common.SnapshotConfig) *Service {
	svc := NewService(store, cfg, 0, common.NewSilentLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 10, 0, 0, 0, time.UTC)
}

// --- Tests ---

func TestBuild_NoData(t *testing.T) {
	svc := newTestService(inputs(nil), defaultConfig())

	snap, err := svc.Build(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", snap.UserID)
	assert.Zero(t, snap.TotalBalance)
	assert.Zero(t, snap.MonthlyIncome)
	assert.Zero(t, snap.MonthlyExpenses)
	assert.Zero(t, snap.SavingsRate)
	assert.Empty(t, snap.BudgetStatus)
	assert.Empty(t, snap.TopSpendingCategories)
	assert.NotNil(t, snap.BudgetOvershoots)
}

func TestBuild_CurrentMonthWindow(t *testing.T) {
	store := inputs(&models.SnapshotInputs{
		Accounts: []models.Account{{ID: "a", Balance: 2000, IsActive: true}, {ID: "b", Balance: 1000}},
		Transactions: []models.Transaction{
			{Amount: 4000, Date: day(6, 1), Category: "Salary"},
			{Amount: -300, Date: day(6, 2), Category: "Food & Dining"},
			{Amount: -200, Date: day(6, 3), Category: "Transportation"},
			{Amount: -100, Date: day(6, 4), Category: "Food & Dining", IsPending: true},
			{Amount: -400, Date: day(6, 5)},
			{Amount: -999, Date: day(5, 20), Category: "Travel"},
		},
	})
	svc := newTestService(store, defaultConfig())

	snap, err := svc.Build(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, models.WindowCurrentMonth, snap.Window)
	assert.Equal(t, 3000.0, snap.TotalBalance, "all accounts count toward balance")
	assert.Equal(t, 2, snap.AccountsCount)
	assert.Equal(t, 4000.0, snap.MonthlyIncome)
	assert.Equal(t, 1000.0, snap.MonthlyExpenses, "last month's transaction is excluded")
	assert.InDelta(t, 0.75, snap.SavingsRate, 1e-9)
	assert.Equal(t, 1, snap.PendingTransactions)

	require.Len(t, snap.TopSpendingCategories, 3)
	assert.Equal(t, models.CategorySpend{Category: "Food & Dining", Amount: 400}, snap.TopSpendingCategories[0])
	assert.Equal(t, models.CategorySpend{Category: "Other", Amount: 400}, snap.TopSpendingCategories[1])
	assert.Equal(t, "Transportation", snap.TopSpendingCategories[2].Category)

	assert.Equal(t, []string{"Food & Dining", "Salary", "Transportation"}, snap.TransactionCategories)
}

func TestBuild_FallsBackToTrailingWindow(t *testing.T) {
	tests := []struct {
		name string
		cfg  common.SnapshotConfig
		txns []models.Transaction
		want string
	}{
		{
			name: "too few transactions this month",
			cfg:  defaultConfig(),
			txns: []models.Transaction{
				{Amount: 3000, Date: day(5, 25)},
				{Amount: -50, Date: day(6, 2)},
			},
			want: models.WindowTrailing,
		},
		{
			name: "no income this month",
			cfg:  defaultConfig(),
			txns: []models.Transaction{
				{Amount: -10, Date: day(6, 1)}, {Amount: -10, Date: day(6, 2)}, {Amount: -10, Date: day(6, 3)},
				{Amount: -10, Date: day(6, 4)}, {Amount: -10, Date: day(6, 5)},
			},
			want: models.WindowTrailing,
		},
		{
			name: "income not required",
			cfg:  common.SnapshotConfig{MinTransactions: 5, RequireIncome: false, FallbackDays: 30},
			txns: []models.Transaction{
				{Amount: -10, Date: day(6, 1)}, {Amount: -10, Date: day(6, 2)}, {Amount: -10, Date: day(6, 3)},
				{Amount: -10, Date: day(6, 4)}, {Amount: -10, Date: day(6, 5)},
			},
			want: models.WindowCurrentMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(inputs(&models.SnapshotInputs{Transactions: tt.txns}), tt.cfg)
			snap, err := svc.Build(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap.Window)
		})
	}
}

func TestBuild_TrailingWindowIncludesLastMonth(t *testing.T) {
	store := inputs(&models.SnapshotInputs{Transactions: []models.Transaction{
		{Amount: 3000, Date: day(5, 25)},
		{Amount: -50, Date: day(6, 2)},
		{Amount: -70, Date: day(5, 10)}, // older than 30 days
	}})
	svc := newTestService(store, defaultConfig())

	snap, err := svc.Build(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, snap.MonthlyIncome)
	assert.Equal(t, 50.0, snap.MonthlyExpenses)
}

func TestBuild_LaterDatedRowsInCurrentMonth(t *testing.T) {
	store := inputs(&models.SnapshotInputs{Transactions: []models.Transaction{
		{Amount: -100, Date: day(6, 2)},
		{Amount: -100, Date: day(6, 5)},
		{Amount: -100, Date: day(6, 9)},
		{Amount: -100, Date: day(6, 12)},
		{Amount: 5000, Date: day(6, 25), Category: "Salary"},
		{Amount: -800, Date: day(7, 1)}, // next month
	}})
	svc := newTestService(store, defaultConfig())

	snap, err := svc.Build(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.WindowCurrentMonth, snap.Window)
	assert.Equal(t, 5000.0, snap.MonthlyIncome)
	assert.Equal(t, 400.0, snap.MonthlyExpenses)
	assert.InDelta(t, 0.92, snap.SavingsRate, 1e-9)
}

func TestBuild_TrailingWindowKeepsLaterDatedRows(t *testing.T) {
	store := inputs(&models.SnapshotInputs{Transactions: []models.Transaction{
		{Amount: 3000, Date: day(5, 25)},
		{Amount: -50, Date: day(6, 2)},
		{Amount: -25, Date: day(6, 28)},
	}})
	svc := newTestService(store, defaultConfig())

	snap, err := svc.Build(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.WindowTrailing, snap.Window)
	assert.Equal(t, 3000.0, snap.MonthlyIncome)
	assert.Equal(t, 75.0, snap.MonthlyExpenses)
}

func TestLoad_WindowCoversBothCandidates(t *testing.T) {
	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		now      time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"mid month reaches back 30 days", testNow, testNow.AddDate(0, 0, -30), july},
		{"month end starts at month start", time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC), time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC), july},
		{"early month", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), july},
		{"december rolls the year", time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			svc := newTestService(store, defaultConfig())
			svc.now = func() time.Time { return tt.now }

			_, err := svc.Load(context.Background(), "u1")
			require.NoError(t, err)
			assert.True(t, store.lastWindow.From.Equal(tt.wantFrom), "from = %v", store.lastWindow.From)
			assert.True(t, store.lastWindow.To.Equal(tt.wantTo), "to = %v", store.lastWindow.To)
		})
	}
}

func TestBuild_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	store := &mockStore{getFn: func(context.Context, string, models.Window) (*models.SnapshotInputs, error) {
		return nil, boom
	}}
	svc := newTestService(store, defaultConfig())

	_, err := svc.Build(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestBuild_StoreTimeout(t *testing.T) {
	store := &mockStore{getFn: func(ctx context.Context, _ string, _ models.Window) (*models.SnapshotInputs, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewService(store, defaultConfig(), 10*time.Millisecond, common.NewSilentLogger())

	_, err := svc.Build(context.Background(), "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		name       string
		budget     models.Budget
		wantPct    float64
		wantStatus string
	}{
		{"zero amount", models.Budget{Amount: 0, Spent: 50}, 0, models.BudgetOnTrack},
		{"under 80", models.Budget{Amount: 500, Spent: 350}, 70, models.BudgetOnTrack},
		{"exactly 80", models.Budget{Amount: 500, Spent: 400}, 80, models.BudgetWarning},
		{"exactly 100", models.Budget{Amount: 500, Spent: 500}, 100, models.BudgetWarning},
		{"over", models.Budget{Amount: 500, Spent: 600}, 120, models.BudgetOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BudgetStatus(tt.budget)
			assert.InDelta(t, tt.wantPct, got.Percentage, 1e-9)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestBuild_OnlyActiveBudgetsAndGoals(t *testing.T) {
	store := inputs(&models.SnapshotInputs{
		Budgets: []models.Budget{
			{Category: "Food & Dining", Amount: 500, Spent: 600, IsActive: true},
			{Category: "Travel", Amount: 100, Spent: 900, IsActive: false},
		},
		Goals: []models.Goal{
			{Name: "Car", TargetAmount: 10000, CurrentAmount: 2500, TargetDate: testNow.AddDate(0, 2, 0), IsActive: true},
			{Name: "Old", TargetAmount: 100, TargetDate: testNow, IsActive: false},
		},
	})
	svc := newTestService(store, defaultConfig())

	snap, err := svc.Build(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, snap.ActiveBudgetsCount)
	assert.Equal(t, []string{"Food & Dining"}, snap.BudgetOvershoots)
	assert.Equal(t, 2, snap.GoalsCount)
	require.Len(t, snap.GoalProgress, 1)
	assert.Equal(t, 25.0, snap.GoalProgress[0].Percentage)
}

func TestGoalProgress_DaysRemaining(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"partial days round down", time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), 9},
		{"past target rounds down", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), -3},
		{"hours past deadline", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), -1},
		{"due later today", time.Date(2025, 6, 16, 20, 0, 0, 0, time.UTC), 0},
		{"other location", time.Date(2025, 6, 20, 22, 0, 0, 0, sydney), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GoalProgress(models.Goal{TargetAmount: 100, TargetDate: tt.target}, testNow)
			assert.Equal(t, tt.want, got.DaysRemaining)
		})
	}
}

func TestGoalProgress_ZeroTarget(t *testing.T) {
	got := GoalProgress(models.Goal{TargetAmount: 0, CurrentAmount: 50, TargetDate: testNow}, testNow)
	assert.Zero(t, got.Percentage)
}

func TestTopCategories_LimitAndTies(t *testing.T) {
	txns := []models.Transaction{
		{Amount: -10, Category: "F"}, {Amount: -10, Category: "E"},
		{Amount: -30, Category: "A"}, {Amount: -20, Category: "B"},
		{Amount: -20, Category: "C"}, {Amount: -5, Category: "D"},
		{Amount: 500, Category: "Salary"},
	}

	got := TopCategories(txns, 5)
	require.Len(t, got, 5)
	names := []string{}
	for _, c := range got {
		names = append(names, c.Category)
	}
	assert.Equal(t, []string{"A", "B", "C", "E", "F"}, names)
}

func TestSpendingInsights(t *testing.T) {
	snap := &models.FinancialSnapshot{
		MonthlyIncome:         5000,
		MonthlyExpenses:       4200,
		TopSpendingCategories: []models.CategorySpend{{Category: "Housing", Amount: 1800}},
	}

	got := SpendingInsights(snap)
	assert.Equal(t, []string{
		"Your highest spending category is Housing",
		"You could save $800.00 per month",
	}, got.Insights)
	assert.Len(t, got.Recommendations, 3)

	empty := SpendingInsights(&models.FinancialSnapshot{MonthlyIncome: 100, MonthlyExpenses: 200})
	assert.Empty(t, empty.Insights)
}
