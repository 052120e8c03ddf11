package interfaces

import (
	"context"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// SnapshotService builds financial snapshots
type SnapshotService interface {
	// Build reads the store and computes a fresh snapshot
	Build(ctx context.Context, userID string) (*models.FinancialSnapshot, error)

	// Load reads the raw inputs covering both candidate windows
	Load(ctx context.Context, userID string) (*models.SnapshotInputs, error)

	// Compute derives a snapshot from already loaded inputs
	Compute(userID string, in *models.SnapshotInputs) *models.FinancialSnapshot
}

// MarketService aggregates the market context. It never fails; missing
// slices fall back to neutral defaults.
type MarketService interface {
	GetMarketContext(ctx context.Context) *models.MarketSnapshot
}

// RiskStrategy scores a snapshot
type RiskStrategy interface {
	Name() string
	Score(ctx context.Context, snapshot *models.FinancialSnapshot) (*models.RiskScore, error)
}

// RiskService scores financial risk with a learned strategy and a rule-based fallback
type RiskService interface {
	// Score never fails
	Score(ctx context.Context, snapshot *models.FinancialSnapshot) *models.RiskScore

	// ScoreStrict surfaces contract violations from the learned strategy
	ScoreStrict(ctx context.Context, snapshot *models.FinancialSnapshot) (*models.RiskScore, error)
}

// StockService ranks and screens instruments
type StockService interface {
	Recommend(ctx context.Context, market *models.MarketSnapshot, riskTolerance string, investmentAmount *float64) []*models.StockRecommendation
	Screen(ctx context.Context, criteria models.ScreenCriteria) []*models.StockRecommendation
}

// HealthService scores financial health
type HealthService interface {
	Score(snapshot *models.FinancialSnapshot) *models.HealthScore
}

// AdviceService answers free-form questions
type AdviceService interface {
	GetAdvice(ctx context.Context, snapshot *models.FinancialSnapshot, market *models.MarketSnapshot, question string) *models.AdviceResult
}

// OptimizeService produces spending optimization suggestions
type OptimizeService interface {
	Optimize(snapshot *models.FinancialSnapshot, market *models.MarketSnapshot) *models.SpendingOptimization
}

// PipelineService runs the agent stages in order. It is the one operation
// that returns hard failures.
type PipelineService interface {
	Run(ctx context.Context, userID string) (*models.PipelineResult, error)
}
