// Package optimize turns a snapshot and the market into spending and saving actions
package optimize

import (
	"fmt"
	"strings"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/advice"
)

const (
	targetSavingsRate = 20.0
	emergencyMonths   = 6
	minPriorityItems  = 3
	decreaseLimit     = 2
	marketTipLimit    = 2
)

// Service implements interfaces.OptimizeService
type Service struct {
	logger *common.Logger
}

// NewService creates a new optimize service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// Optimize is deterministic: the same snapshot and market always give the same result
func (s *Service) Optimize(snap *models.FinancialSnapshot, market *models.MarketSnapshot) *models.SpendingOptimization {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}

	c := conditions{
		snap:       snap,
		market:     market,
		savings:    snap.SavingsRatePercent(),
		volatility: market.VolatilityBand(),
		inverted:   market.YieldCurveInverted,
		inflation:  market.InflationExpectation,
	}
	if len(snap.TopSpendingCategories) > 0 {
		c.top = &snap.TopSpendingCategories[0]
	}

	s.logger.Debug().
		Float64("savings_rate", c.savings).
		Int("overshoots", len(snap.BudgetOvershoots)).
		Str("volatility", c.volatility).
		Bool("inverted", c.inverted).
		Str("inflation", c.inflation).
		Msg("Optimizing spending")

	return &models.SpendingOptimization{
		SpendingOptimization: c.spending(),
		SavingsOpportunities: c.savingsOpportunities(),
		PriorityActions:      c.priorities(),
		BudgetAdjustments:    c.adjustments(),
		FinancialHealthTips:  c.tips(),
		RiskFactors:          c.risks(),
		PositiveHighlights:   c.highlights(),
		MarketInsights:       append([]string{}, market.Summary...),
	}
}

// conditions are the inputs every section is conditioned on
type conditions struct {
	snap       *models.FinancialSnapshot
	market     *models.MarketSnapshot
	top        *models.CategorySpend
	savings    float64
	volatility string
	inverted   bool
	inflation  string
}

func (c conditions) targetSavings() float64 {
	return c.snap.MonthlyIncome * targetSavingsRate / 100
}

func (c conditions) spending() []string {
	out := []string{}
	if len(c.snap.BudgetOvershoots) > 0 {
		out = append(out, "Address budget overshoots in: "+strings.Join(c.snap.BudgetOvershoots, ", "))
	}
	if c.top != nil {
		out = append(out, fmt.Sprintf("Review your %s category where you're spending $%s", c.top.Category, advice.Money(c.top.Amount)))
	} else {
		out = append(out, "Review top spending categories and identify areas to cut back",
			"Consider meal planning to reduce food expenses")
	}
	if c.snap.MonthlyExpenses > 0 {
		out = append(out, fmt.Sprintf("With monthly expenses of $%s, consider reducing by 10-15%%", advice.Money(c.snap.MonthlyExpenses)))
	}
	out = append(out,
		"Cancel unused subscriptions",
		"Use cashback rewards for purchases",
		"Negotiate better rates on bills and services",
		fmt.Sprintf("Given %s inflation, prioritize essential spending", c.inflation),
	)
	return out
}

func (c conditions) savingsOpportunities() []string {
	out := []string{}
	if c.snap.MonthlyIncome > 0 {
		out = append(out, fmt.Sprintf("Automate savings transfers to reach $%s monthly savings (20%% of $%s income)",
			advice.Money(c.targetSavings()), advice.Money(c.snap.MonthlyIncome)))
	} else {
		out = append(out, "Automate savings transfers")
	}
	if rate := c.market.Treasury10Y; rate > 0 {
		out = append(out, fmt.Sprintf("Consider high-yield savings accounts (current rates ~%.2f%%)", rate))
	} else {
		out = append(out, "Consider high-yield savings accounts")
	}
	out = append(out, "Reduce dining out expenses", "Shop during sales and use coupons")
	if c.inflation == models.InflationHigh {
		out = append(out, "Consider inflation-protected investments (TIPS, I-Bonds)")
	}
	return out
}

func (c conditions) priorities() []string {
	out := []string{}
	if len(c.snap.BudgetOvershoots) > 0 {
		out = append(out, "Address budget overshoots immediately")
	}
	if c.inverted {
		out = append(out, "Build emergency fund (recession risk elevated)")
	}
	if c.volatility == "high" {
		out = append(out, "Avoid market timing - use dollar-cost averaging")
	}
	switch available := c.snap.Available(); {
	case available < 0:
		out = append(out, fmt.Sprintf("Close the $%s monthly gap between expenses and income", advice.Money(-available)))
	case c.snap.MonthlyIncome > 0 && c.savings < targetSavingsRate:
		out = append(out, fmt.Sprintf("Increase savings from $%s to $%s per month",
			advice.Money(available), advice.Money(c.targetSavings())))
	}
	out = append(out, "Set up automatic savings")
	for _, filler := range []string{"Review and cancel unnecessary subscriptions", "Track expenses daily"} {
		if len(out) >= minPriorityItems {
			break
		}
		out = append(out, filler)
	}
	return out
}

func (c conditions) adjustments() models.BudgetAdjustments {
	adj := models.BudgetAdjustments{Increase: []string{}, Decrease: []string{}}
	if c.inverted {
		adj.Increase = append(adj.Increase, "Emergency fund allocation")
	}
	for i, cat := range c.snap.TopSpendingCategories {
		if i == decreaseLimit {
			break
		}
		adj.Decrease = append(adj.Decrease, cat.Category)
	}
	return adj
}

func (c conditions) tips() []string {
	out := []string{}
	if c.savings < targetSavingsRate {
		out = append(out, fmt.Sprintf("Aim to increase savings rate from %.1f%% to 20%%", c.savings))
	} else {
		out = append(out, fmt.Sprintf("Keep your savings rate at or above %.1f%%", c.savings))
	}
	if c.snap.MonthlyExpenses > 0 {
		out = append(out, fmt.Sprintf("Build 3-6 months emergency fund (target: $%s)", advice.Money(c.snap.MonthlyExpenses*emergencyMonths)))
	} else {
		out = append(out, fmt.Sprintf("Build 3-6 months emergency fund (especially important in current %s market)", c.market.Sentiment))
	}
	out = append(out, "Track expenses daily", "Review budgets weekly")
	for i, line := range c.market.Summary {
		if i == marketTipLimit {
			break
		}
		out = append(out, line)
	}
	return out
}

func (c conditions) risks() []string {
	out := []string{}
	if c.inverted {
		out = append(out, "Yield curve inversion suggests recession risk")
	}
	if c.volatility == "high" {
		out = append(out, fmt.Sprintf("High market volatility (VIX: %.2f) - expect price swings", c.market.VIX))
	}
	if c.inflation == models.InflationHigh {
		out = append(out, "Elevated inflation may erode purchasing power")
	}
	if c.savings < 0 {
		out = append(out, "Spending exceeds income")
	}
	return out
}

func (c conditions) highlights() []string {
	out := []string{"You're tracking your finances"}
	if c.snap.GoalsCount > 0 {
		out = append(out, "You have financial goals set")
	}
	if c.savings >= targetSavingsRate {
		out = append(out, fmt.Sprintf("Your %.1f%% savings rate meets the 20%% target", c.savings))
	}
	if c.snap.ActiveBudgetsCount > 0 && len(c.snap.BudgetOvershoots) == 0 {
		out = append(out, "All active budgets are within their limits")
	}
	return out
}

// Compile-time check
var _ interfaces.OptimizeService = (*Service)(nil)
