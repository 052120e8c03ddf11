package models

// Advice result sources
const (
	AdviceGenerated = "generated"
	AdviceFallback  = "fallback"
)

// AdviceResult is narrative advice with structured follow-ups
type AdviceResult struct {
	Answer               string                 `json:"answer"`
	Recommendations      []string               `json:"recommendations"`
	Considerations       []string               `json:"considerations"`
	NextSteps            []string               `json:"next_steps"`
	MarketContext        string                 `json:"market_context,omitempty"`
	StockRecommendations []*StockRecommendation `json:"stock_recommendations,omitempty"`
	Source               string                 `json:"source"`
	States               []string               `json:"states,omitempty"`
}

// SpendingOptimization is a market-aware set of spending and saving actions
type SpendingOptimization struct {
	SpendingOptimization []string          `json:"spending_optimization"`
	SavingsOpportunities []string          `json:"savings_opportunities"`
	PriorityActions      []string          `json:"priority_actions"`
	BudgetAdjustments    BudgetAdjustments `json:"budget_adjustments"`
	FinancialHealthTips  []string          `json:"financial_health_tips"`
	RiskFactors          []string          `json:"risk_factors"`
	PositiveHighlights   []string          `json:"positive_highlights"`
	MarketInsights       []string          `json:"market_insights"`
}

// BudgetAdjustments names categories to grow and to shrink
type BudgetAdjustments struct {
	Increase []string `json:"increase"`
	Decrease []string `json:"decrease"`
}
