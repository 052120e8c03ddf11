// Package risk scores financial risk with a pretrained model and a rule-based fallback
package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// NoIncomeScore is the rule-based score for a user without income
const NoIncomeScore = 0.8

// LearnedStrategy scores with a pretrained model over ExtractFeatures
type LearnedStrategy struct {
	model interfaces.RiskModel
}

// NewLearnedStrategy wraps a risk model
func NewLearnedStrategy(model interfaces.RiskModel) *LearnedStrategy {
	return &LearnedStrategy{model: model}
}

// Name returns the strategy name
func (l *LearnedStrategy) Name() string { return models.StrategyLearned }

// Score rejects a model whose input size differs from FeatureCount
func (l *LearnedStrategy) Score(_ context.Context, snap *models.FinancialSnapshot) (*models.RiskScore, error) {
	if l.model == nil {
		return nil, errors.New("no risk model loaded")
	}
	if size := l.model.InputSize(); size != FeatureCount {
		return nil, fmt.Errorf("%w: model input size %d, extractor produces %d", ErrFeatureShape, size, FeatureCount)
	}
	score, err := l.model.Score(ExtractFeatures(snap))
	if err != nil {
		return nil, err
	}
	return models.NewRiskScore(score, models.StrategyLearned), nil
}

// RuleBasedStrategy applies fixed expense and savings thresholds
type RuleBasedStrategy struct{}

// Name returns the strategy name
func (RuleBasedStrategy) Name() string { return models.StrategyRuleBased }

// Score never fails
func (r RuleBasedStrategy) Score(_ context.Context, snap *models.FinancialSnapshot) (*models.RiskScore, error) {
	return models.NewRiskScore(RuleScore(snap), models.StrategyRuleBased), nil
}

// RuleScore starts at 0.5 and adds penalties for overspending, low savings and a negative balance
func RuleScore(snap *models.FinancialSnapshot) float64 {
	if snap == nil || snap.MonthlyIncome == 0 {
		return NoIncomeScore
	}

	expenseRatio := snap.MonthlyExpenses / snap.MonthlyIncome
	savingsRate := (snap.MonthlyIncome - snap.MonthlyExpenses) / snap.MonthlyIncome

	score := 0.5
	if expenseRatio > 1.0 {
		score += 0.3
	} else if expenseRatio > 0.9 {
		score += 0.2
	}

	if savingsRate < 0 {
		score += 0.2
	} else if savingsRate < 0.1 {
		score += 0.1
	}

	if snap.TotalBalance < 0 {
		score += 0.2
	}

	switch {
	case score > 1:
		return 1
	case score < 0:
		return 0
	}
	return score
}

// Service implements interfaces.RiskService
type Service struct {
	learned interfaces.RiskStrategy
	rule    interfaces.RiskStrategy
	logger  *common.Logger
}

// NewService creates a risk service. A nil model leaves only the rule-based strategy.
func NewService(model interfaces.RiskModel, logger *common.Logger) *Service {
	s := &Service{
		rule:   RuleBasedStrategy{},
		logger: logger,
	}
	if model != nil {
		s.learned = NewLearnedStrategy(model)
	}
	return s
}

// NewServiceFromConfig loads the model artifact named in config. A missing or
// invalid artifact is logged and the service runs rule-based only.
func NewServiceFromConfig(config common.RiskConfig, logger *common.Logger) *Service {
	if config.ModelPath == "" {
		return NewService(nil, logger)
	}
	model, err := LoadModel(config.ModelPath)
	if err != nil {
		logger.Warn().Str("path", config.ModelPath).Err(err).Msg("Risk model unavailable, using rule-based scoring")
		return NewService(nil, logger)
	}
	logger.Info().Str("path", config.ModelPath).Str("model", model.Name).Int("inputs", model.InputSize()).Msg("Risk model loaded")
	return NewService(model, logger)
}

// Score tries the learned strategy and falls back to the rules on any error
func (s *Service) Score(ctx context.Context, snap *models.FinancialSnapshot) *models.RiskScore {
	if s.learned != nil {
		score, err := s.learned.Score(ctx, snap)
		if err == nil {
			return score
		}
		s.logger.Warn().Err(err).Msg("Learned risk scoring failed, using rule-based fallback")
	}
	score, _ := s.rule.Score(ctx, snap)
	return score
}

// ScoreStrict behaves like Score but returns feature-shape violations
func (s *Service) ScoreStrict(ctx context.Context, snap *models.FinancialSnapshot) (*models.RiskScore, error) {
	if s.learned != nil {
		score, err := s.learned.Score(ctx, snap)
		if err == nil {
			return score, nil
		}
		if errors.Is(err, ErrFeatureShape) {
			return nil, err
		}
		s.logger.Warn().Err(err).Msg("Learned risk scoring failed, using rule-based fallback")
	}
	return s.rule.Score(ctx, snap)
}

// Compile-time checks
var (
	_ interfaces.RiskService  = (*Service)(nil)
	_ interfaces.RiskStrategy = (*LearnedStrategy)(nil)
	_ interfaces.RiskStrategy = RuleBasedStrategy{}
)
