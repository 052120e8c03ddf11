package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/clients/anthropic"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/clients/eodhd"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/clients/gemini"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/clients/yahoo"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/advice"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/health"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/market"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/optimize"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/pipeline"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/risk"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/snapshot"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/stocks"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/storage"
)

// ErrRecordingDisabled is returned when execution history is requested but no recorder is configured
var ErrRecordingDisabled = errors.New("execution recording is disabled")

// App holds all initialized services and clients. It is the shared core
// used by every cmd/advisor command.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Store           interfaces.SnapshotStore
	Recorder        interfaces.ExecutionRecorder
	MarketClient    interfaces.MarketDataClient
	Generator       interfaces.TextGenerator
	SnapshotService interfaces.SnapshotService
	MarketService   interfaces.MarketService
	RiskService     interfaces.RiskService
	StockService    interfaces.StockService
	HealthService   interfaces.HealthService
	AdviceService   interfaces.AdviceService
	OptimizeService interfaces.OptimizeService
	PipelineService interfaces.PipelineService
	StartupTime     time.Time

	scheduler *cron.Cron
}

// Deps are the external collaborators the services are built on. Any of them
// may be nil: a nil store yields empty snapshots, a nil market client neutral
// market data, a nil generator synthesized text, a nil recorder no history.
type Deps struct {
	Store        interfaces.SnapshotStore
	Recorder     interfaces.ExecutionRecorder
	MarketClient interfaces.MarketDataClient
	Generator    interfaces.TextGenerator
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, ADVISOR_CONFIG,
// advisor.toml next to the binary, then config/advisor.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("ADVISOR_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "advisor.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/advisor.toml"
		}
	}
	return configPath
}

// NewApp loads configuration, opens storage and clients, and wires every service.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	for _, key := range config.ValidateRequired() {
		event := logger.Warn()
		if config.IsProduction() {
			event = logger.Error()
		}
		event.Str("key", key).Str("environment", config.Environment).Msg("Required configuration missing - dependent features will degrade")
	}

	if config.Risk.ModelPath != "" && !filepath.IsAbs(config.Risk.ModelPath) {
		if _, err := os.Stat(config.Risk.ModelPath); os.IsNotExist(err) {
			config.Risk.ModelPath = filepath.Join(getBinaryDir(), config.Risk.ModelPath)
		}
	}

	var deps Deps

	store, err := storage.NewSnapshotStore(ctx, config.Storage, logger)
	if err != nil {
		logger.Warn().Err(err).Str("driver", config.Storage.Driver).Msg("Snapshot store unavailable - snapshots will be empty")
	} else {
		deps.Store = store
	}

	recorder, err := storage.NewExecutionRecorder(config.Recorder, logger)
	if err != nil {
		logger.Warn().Err(err).Str("path", config.Recorder.Path).Msg("Execution recorder unavailable - pipeline runs will not be recorded")
	} else if recorder != nil {
		deps.Recorder = recorder
	}

	deps.MarketClient = newMarketClient(config, logger)

	deps.Generator, err = newGenerator(ctx, config.LLM, logger)
	if err != nil {
		logger.Warn().Err(err).Str("provider", config.LLM.Provider).Msg("Text generation unavailable - using synthesized results")
	}

	return New(config, logger, deps), nil
}

// New wires the services over the given dependencies
func New(config *common.Config, logger *common.Logger, deps Deps) *App {
	startupStart := time.Now()

	store := deps.Store
	if store == nil {
		store = unavailableStore{}
	}

	snapshotService := snapshot.NewService(store, config.Snapshot, config.Storage.GetTimeout(), logger)
	marketService := market.NewService(deps.MarketClient, config.Market.GetTimeout(), logger)
	riskService := risk.NewServiceFromConfig(config.Risk, logger)
	stockService := stocks.NewService(deps.MarketClient, config.Stocks, logger)
	adviceService := advice.NewService(deps.Generator, stockService, config.LLM, logger)
	pipelineService := pipeline.NewService(snapshotService, riskService, deps.Generator, deps.Recorder, config.LLM, logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		Store:           deps.Store,
		Recorder:        deps.Recorder,
		MarketClient:    deps.MarketClient,
		Generator:       deps.Generator,
		SnapshotService: snapshotService,
		MarketService:   marketService,
		RiskService:     riskService,
		StockService:    stockService,
		HealthService:   health.NewService(),
		AdviceService:   adviceService,
		OptimizeService: optimize.NewService(logger),
		PipelineService: pipelineService,
		StartupTime:     startupStart,
	}

	generator := "none"
	if deps.Generator != nil {
		generator = deps.Generator.Model()
	}
	logger.Info().
		Bool("store", deps.Store != nil).
		Bool("recorder", deps.Recorder != nil).
		Bool("market", deps.MarketClient != nil).
		Str("generator", generator).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a
}

// newMarketClient picks the configured provider. EODHD without a key falls
// back to the keyless Yahoo chart API.
func newMarketClient(config *common.Config, logger *common.Logger) interfaces.MarketDataClient {
	provider := config.Market.Provider
	if provider == "eodhd" && config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - using Yahoo Finance")
		provider = "yahoo"
	}

	switch provider {
	case "eodhd":
		c := config.Clients.EODHD
		return eodhd.NewClient(c.APIKey,
			eodhd.WithBaseURL(c.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(c.RateLimit),
			eodhd.WithTimeout(c.GetTimeout()),
			eodhd.WithTickers(config.Market.Tickers),
		)
	case "yahoo":
		c := config.Clients.Yahoo
		return yahoo.NewClient(
			yahoo.WithBaseURL(c.BaseURL),
			yahoo.WithLogger(logger),
			yahoo.WithRateLimit(c.RateLimit),
			yahoo.WithTimeout(c.GetTimeout()),
			yahoo.WithTickers(config.Market.Tickers),
		)
	default:
		logger.Warn().Str("provider", provider).Msg("Unknown market provider - market data will be neutral")
		return nil
	}
}

// newGenerator returns nil without error when generation is switched off
func newGenerator(ctx context.Context, config common.LLMConfig, logger *common.Logger) (interfaces.TextGenerator, error) {
	switch config.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
		if config.APIKey == "" {
			return nil, errors.New("gemini API key not configured")
		}
		client, err := gemini.NewClient(ctx, config.APIKey,
			gemini.WithModel(config.Model),
			gemini.WithMaxTokens(config.MaxTokens),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		return client, nil
	case "anthropic":
		if config.APIKey == "" {
			return nil, errors.New("anthropic API key not configured")
		}
		opts := []anthropic.ClientOption{
			anthropic.WithMaxTokens(config.MaxTokens),
			anthropic.WithLogger(logger),
		}
		if config.Model != "" {
			opts = append(opts, anthropic.WithModel(config.Model))
		}
		return anthropic.NewClient(config.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: gemini, anthropic, none)", config.Provider)
	}
}

// unavailableStore stands in when no snapshot store could be opened
type unavailableStore struct{}

func (unavailableStore) GetSnapshotInputs(context.Context, string, models.Window) (*models.SnapshotInputs, error) {
	return nil, errors.New("snapshot store unavailable")
}

func (unavailableStore) Close() error { return nil }

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close recorder, close store.
func (a *App) Close() {
	a.StopScheduler()
	if a.Recorder != nil {
		if err := a.Recorder.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close execution recorder")
		}
		a.Recorder = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close snapshot store")
		}
		a.Store = nil
	}
}

// --- Operations ---

// snapshot builds the user's snapshot. A store failure or timeout yields the empty snapshot.
func (a *App) snapshot(ctx context.Context, userID string) *models.FinancialSnapshot {
	snap, err := a.SnapshotService.Build(ctx, userID)
	if err != nil {
		a.Logger.Warn().Str("user_id", userID).Err(err).Msg("Snapshot unavailable, using empty snapshot")
		return a.SnapshotService.Compute(userID, nil)
	}
	return snap
}

// loadContext reads the snapshot and the market concurrently and waits for both
func (a *App) loadContext(ctx context.Context, userID string) (*models.FinancialSnapshot, *models.MarketSnapshot) {
	var (
		wg   sync.WaitGroup
		snap *models.FinancialSnapshot
		mkt  *models.MarketSnapshot
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		snap = a.snapshot(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		mkt = a.MarketService.GetMarketContext(ctx)
	}()
	wg.Wait()
	return snap, mkt
}

// GetFinancialSnapshot returns the user's current snapshot
func (a *App) GetFinancialSnapshot(ctx context.Context, userID string) *models.FinancialSnapshot {
	return a.snapshot(ctx, userID)
}

// GetSpendingInsights returns the spending pattern insights for the user's snapshot
func (a *App) GetSpendingInsights(ctx context.Context, userID string) *models.SpendingInsights {
	return snapshot.SpendingInsights(a.snapshot(ctx, userID))
}

// GetMarketContext returns the current market snapshot
func (a *App) GetMarketContext(ctx context.Context) *models.MarketSnapshot {
	return a.MarketService.GetMarketContext(ctx)
}

// ComputeHealthScore scores the user's financial health
func (a *App) ComputeHealthScore(ctx context.Context, userID string) *models.HealthScore {
	return a.HealthService.Score(a.snapshot(ctx, userID))
}

// ComputeRiskScore scores the user's financial risk
func (a *App) ComputeRiskScore(ctx context.Context, userID string) *models.RiskScore {
	return a.RiskService.Score(ctx, a.snapshot(ctx, userID))
}

// GetStockRecommendations ranks the regime basket for the current market
func (a *App) GetStockRecommendations(ctx context.Context, riskTolerance string, investmentAmount *float64) []*models.StockRecommendation {
	return a.StockService.Recommend(ctx, a.MarketService.GetMarketContext(ctx), riskTolerance, investmentAmount)
}

// ScreenStocks filters the screener universe
func (a *App) ScreenStocks(ctx context.Context, criteria models.ScreenCriteria) []*models.StockRecommendation {
	return a.StockService.Screen(ctx, criteria)
}

// GetAdvice answers a free-form question
func (a *App) GetAdvice(ctx context.Context, userID, question string) *models.AdviceResult {
	snap, mkt := a.loadContext(ctx, userID)
	return a.AdviceService.GetAdvice(ctx, snap, mkt, question)
}

// OptimizeSpending suggests spending and saving actions
func (a *App) OptimizeSpending(ctx context.Context, userID string) *models.SpendingOptimization {
	snap, mkt := a.loadContext(ctx, userID)
	return a.OptimizeService.Optimize(snap, mkt)
}

// RunAgentPipeline runs every pipeline stage. Unlike the advisory operations it can fail.
func (a *App) RunAgentPipeline(ctx context.Context, userID string) (*models.PipelineResult, error) {
	return a.PipelineService.Run(ctx, userID)
}

// ListExecutions returns the recorded stage executions of one pipeline run
func (a *App) ListExecutions(ctx context.Context, runID string) ([]*models.StageExecution, error) {
	if a.Recorder == nil {
		return nil, ErrRecordingDisabled
	}
	return a.Recorder.ListExecutions(ctx, runID)
}
