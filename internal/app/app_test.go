package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/clients/yahoo"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// --- Mocks ---

type mockStore struct {
	getFn func(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error)
}

func (m *mockStore) GetSnapshotInputs(ctx context.Context, userID string, window models.Window) (*models.SnapshotInputs, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, window)
	}
	return &models.SnapshotInputs{}, nil
}

func (m *mockStore) Close() error { return nil }

type mockRecorder struct {
	mu    sync.Mutex
	execs []*models.StageExecution
}

func (m *mockRecorder) RecordExecution(_ context.Context, exec *models.StageExecution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs = append(m.execs, exec)
	return nil
}

func (m *mockRecorder) ListExecutions(_ context.Context, runID string) ([]*models.StageExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.StageExecution
	for _, e := range m.execs {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRecorder) Close() error { return nil }

// indexClient serves indices and volatility and fails everything else
type indexClient struct {
	onIndices func()
}

var errUnavailable = errors.New("endpoint unavailable")

func (c *indexClient) GetIndices(context.Context) ([]models.IndexPerformance, error) {
	if c.onIndices != nil {
		c.onIndices()
	}
	return []models.IndexPerformance{
		{Symbol: "sp500", Name: "S&P 500", Value: 5400, ChangePct: 1.4, Trend: "up"},
		{Symbol: "nasdaq", Name: "NASDAQ", Value: 17000, ChangePct: 1.8, Trend: "up"},
	}, nil
}

func (c *indexClient) GetYields(context.Context) (*models.Yields, error) { return nil, errUnavailable }
func (c *indexClient) GetVolatility(context.Context) (float64, error)    { return 14, nil }
func (c *indexClient) GetInflationProxy(context.Context) (*models.InflationProxy, error) {
	return nil, errUnavailable
}
func (c *indexClient) GetPriceHistory(context.Context, string, time.Duration) ([]models.EODBar, error) {
	return nil, errUnavailable
}
func (c *indexClient) GetFundamentals(context.Context, string) (*models.Fundamentals, error) {
	return nil, errUnavailable
}
func (c *indexClient) GetTechnical(context.Context, string) (*models.Technical, error) {
	return nil, errUnavailable
}

func testConfig() *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.LLM.Provider = "none"
	cfg.Storage.Timeout = "2s"
	cfg.Market.Timeout = "1s"
	cfg.Recorder.Path = ""
	cfg.Risk.ModelPath = ""
	return cfg
}

// scenarioInputs is the overshoot scenario: income 5000, expenses 4200,
// balance 3000, Food budget 500 with 600 spent
func scenarioInputs() *models.SnapshotInputs {
	at := time.Now().Add(-time.Hour)
	return &models.SnapshotInputs{
		Accounts: []models.Account{{ID: "a1", Name: "Checking", Balance: 3000, IsActive: true}},
		Transactions: []models.Transaction{
			{ID: "t1", AccountID: "a1", Amount: 5000, Date: at, Category: "Salary"},
			{ID: "t2", AccountID: "a1", Amount: -4200, Date: at, Category: "Food"},
		},
		Budgets: []models.Budget{{ID: "b1", Category: "Food", Amount: 500, Spent: 600, IsActive: true}},
	}
}

func scenarioStore() *mockStore {
	return &mockStore{getFn: func(context.Context, string, models.Window) (*models.SnapshotInputs, error) {
		return scenarioInputs(), nil
	}}
}

// --- Tests ---

func TestNew_NoDependencies(t *testing.T) {
	a := New(testConfig(), common.NewSilentLogger(), Deps{})
	defer a.Close()
	ctx := context.Background()

	snap := a.GetFinancialSnapshot(ctx, "u1")
	assert.Equal(t, "u1", snap.UserID)
	assert.Zero(t, snap.MonthlyIncome)
	assert.NotNil(t, snap.BudgetStatus)

	mkt := a.GetMarketContext(ctx)
	assert.Equal(t, models.SentimentNeutral, mkt.Sentiment)
	assert.Len(t, mkt.Degraded, 4)

	assert.InDelta(t, 0.8, a.ComputeRiskScore(ctx, "u1").Score, 1e-9)
	assert.NotNil(t, a.ComputeHealthScore(ctx, "u1"))

	advice := a.GetAdvice(ctx, "u1", "How do I save more?")
	assert.Equal(t, models.AdviceFallback, advice.Source)
	assert.NotEmpty(t, advice.NextSteps)

	recs := a.GetStockRecommendations(ctx, "moderate", nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Empty(t, a.ScreenStocks(ctx, models.ScreenCriteria{}))

	assert.NotNil(t, a.OptimizeSpending(ctx, "u1"))

	result, err := a.RunAgentPipeline(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, result.Stages, 5)

	_, err = a.ListExecutions(ctx, result.RunID)
	assert.ErrorIs(t, err, ErrRecordingDisabled)
}

func TestOperations_OvershootScenario(t *testing.T) {
	recorder := &mockRecorder{}
	a := New(testConfig(), common.NewSilentLogger(), Deps{Store: scenarioStore(), Recorder: recorder})
	ctx := context.Background()

	health := a.ComputeHealthScore(ctx, "u1")
	assert.Equal(t, 70, health.Score)
	assert.Equal(t, models.HealthGood, health.Status)

	riskScore := a.ComputeRiskScore(ctx, "u1")
	assert.InDelta(t, 0.5, riskScore.Score, 1e-9)
	assert.Equal(t, models.RiskMedium, riskScore.Level)

	opt := a.OptimizeSpending(ctx, "u1")
	assert.Contains(t, opt.SpendingOptimization, "Address budget overshoots in: Food")

	insights := a.GetSpendingInsights(ctx, "u1")
	require.NotNil(t, insights)

	result, err := a.RunAgentPipeline(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, result.Notification, 1)
	assert.Equal(t, "Budget Exceeded: Food", result.Notification[0].Title)

	execs, err := a.ListExecutions(ctx, result.RunID)
	require.NoError(t, err)
	assert.Len(t, execs, 5)
}

func TestGetAdvice_LoadsSnapshotAndMarketConcurrently(t *testing.T) {
	marketStarted := make(chan struct{})
	var once sync.Once
	client := &indexClient{onIndices: func() { once.Do(func() { close(marketStarted) }) }}

	// The store only answers once the market fetch has begun, so a
	// sequential load would hit the store timeout and yield an empty snapshot.
	store := &mockStore{getFn: func(ctx context.Context, _ string, _ models.Window) (*models.SnapshotInputs, error) {
		select {
		case <-marketStarted:
			return scenarioInputs(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}

	a := New(testConfig(), common.NewSilentLogger(), Deps{Store: store, MarketClient: client})
	got := a.GetAdvice(context.Background(), "u1", "Help me with my budget")

	assert.Equal(t, models.AdviceFallback, got.Source)
	assert.Contains(t, got.Considerations, "Budget overshoots")

	snap, mkt := a.loadContext(context.Background(), "u1")
	assert.InDelta(t, 5000, snap.MonthlyIncome, 1e-9)
	assert.Equal(t, models.SentimentBullish, mkt.Sentiment)
}

func TestSnapshot_StoreFailureDegrades(t *testing.T) {
	store := &mockStore{getFn: func(context.Context, string, models.Window) (*models.SnapshotInputs, error) {
		return nil, errors.New("connection refused")
	}}
	a := New(testConfig(), common.NewSilentLogger(), Deps{Store: store})

	snap := a.GetFinancialSnapshot(context.Background(), "u1")
	require.NotNil(t, snap)
	assert.Zero(t, snap.TotalBalance)

	health := a.ComputeHealthScore(context.Background(), "u1")
	assert.NotNil(t, health)
}

func TestRunAgentPipeline_ContractViolation(t *testing.T) {
	store := &mockStore{getFn: func(context.Context, string, models.Window) (*models.SnapshotInputs, error) {
		return &models.SnapshotInputs{Budgets: []models.Budget{{Category: "Food", Amount: -1, IsActive: true}}}, nil
	}}
	a := New(testConfig(), common.NewSilentLogger(), Deps{Store: store})

	result, err := a.RunAgentPipeline(context.Background(), "u1")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrContractViolation)

	// advisory operations never fail on the same data
	assert.NotNil(t, a.ComputeHealthScore(context.Background(), "u1"))
}

func TestSweepPipeline(t *testing.T) {
	store := &mockStore{getFn: func(_ context.Context, userID string, _ models.Window) (*models.SnapshotInputs, error) {
		if userID == "broken" {
			return &models.SnapshotInputs{Goals: []models.Goal{{Name: "Car", TargetAmount: -5}}}, nil
		}
		return scenarioInputs(), nil
	}}
	cfg := testConfig()
	cfg.Scheduler.Users = []string{"u1", "broken", "u2"}
	recorder := &mockRecorder{}
	a := New(cfg, common.NewSilentLogger(), Deps{Store: store, Recorder: recorder})

	ok, failed := a.SweepPipeline(context.Background())
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
	assert.Len(t, recorder.execs, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, failed = a.SweepPipeline(ctx)
	assert.Zero(t, ok)
	assert.Zero(t, failed)
}

func TestStartScheduler(t *testing.T) {
	t.Run("no users", func(t *testing.T) {
		a := New(testConfig(), common.NewSilentLogger(), Deps{})
		assert.Error(t, a.StartScheduler(context.Background()))
	})

	t.Run("invalid cron expression", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scheduler.Users = []string{"u1"}
		cfg.Scheduler.PipelineCron = "every morning"
		a := New(cfg, common.NewSilentLogger(), Deps{})
		assert.Error(t, a.StartScheduler(context.Background()))
	})

	t.Run("start and stop", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scheduler.Users = []string{"u1"}
		cfg.Scheduler.PipelineCron = "0 0 7 * * *"
		a := New(cfg, common.NewSilentLogger(), Deps{})

		require.NoError(t, a.StartScheduler(context.Background()))
		assert.Error(t, a.StartScheduler(context.Background()))
		a.StopScheduler()
		a.StopScheduler()
		require.NoError(t, a.StartScheduler(context.Background()))
		a.Close()
	})
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	gen, err := newGenerator(ctx, common.LLMConfig{Provider: "none"}, common.NewSilentLogger())
	assert.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = newGenerator(ctx, common.LLMConfig{Provider: ""}, common.NewSilentLogger())
	assert.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = newGenerator(ctx, common.LLMConfig{Provider: "gemini"}, common.NewSilentLogger())
	assert.Error(t, err)
	assert.Nil(t, gen)

	gen, err = newGenerator(ctx, common.LLMConfig{Provider: "ollama", APIKey: "k"}, common.NewSilentLogger())
	assert.Error(t, err)
	assert.Nil(t, gen)

	gen, err = newGenerator(ctx, common.LLMConfig{Provider: "anthropic", APIKey: "k", Model: "claude-3-5-haiku-latest", MaxTokens: 512}, common.NewSilentLogger())
	require.NoError(t, err)
	require.NotNil(t, gen)
	assert.Equal(t, "claude-3-5-haiku-latest", gen.Model())
}

func TestNewMarketClient(t *testing.T) {
	cfg := testConfig()
	cfg.Market.Provider = "eodhd"
	cfg.Clients.EODHD.APIKey = ""
	_, isYahoo := newMarketClient(cfg, common.NewSilentLogger()).(*yahoo.Client)
	assert.True(t, isYahoo, "eodhd without a key falls back to yahoo")

	cfg.Market.Provider = "bloomberg"
	assert.Nil(t, newMarketClient(cfg, common.NewSilentLogger()))
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))

	t.Setenv("ADVISOR_CONFIG", "/etc/advisor/advisor.toml")
	assert.Equal(t, "/etc/advisor/advisor.toml", ResolveConfigPath(""))
}
