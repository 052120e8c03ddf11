package models

// Budget status values
const (
	BudgetOnTrack = "on_track"
	BudgetWarning = "warning"
	BudgetOver    = "over"
)

// Snapshot window kinds
const (
	WindowCurrentMonth = "current_month"
	WindowTrailing     = "trailing"
)

// FinancialSnapshot is a point-in-time aggregation of a user's finances.
// SavingsRate is a fraction: (income-expenses)/income, or 0 without income.
type FinancialSnapshot struct {
	UserID                string          `json:"user_id"`
	TotalBalance          float64         `json:"total_balance"`
	MonthlyIncome         float64         `json:"monthly_income"`
	MonthlyExpenses       float64         `json:"monthly_expenses"`
	SavingsRate           float64         `json:"savings_rate"`
	BudgetStatus          []BudgetStatus  `json:"budget_status"`
	BudgetOvershoots      []string        `json:"budget_overshoots"`
	GoalProgress          []GoalProgress  `json:"goal_progress"`
	TopSpendingCategories []CategorySpend `json:"top_spending_categories"`
	TransactionCategories []string        `json:"transaction_categories"`
	PendingTransactions   int             `json:"pending_transactions"`
	AccountsCount         int             `json:"accounts_count"`
	ActiveBudgetsCount    int             `json:"active_budgets_count"`
	GoalsCount            int             `json:"goals_count"`
	Window                string          `json:"window"`
}

// SavingsRatePercent returns the savings rate as a percentage
func (s *FinancialSnapshot) SavingsRatePercent() float64 {
	if s == nil {
		return 0
	}
	return s.SavingsRate * 100
}

// Available returns monthly income minus monthly expenses
func (s *FinancialSnapshot) Available() float64 {
	if s == nil {
		return 0
	}
	return s.MonthlyIncome - s.MonthlyExpenses
}

// BudgetStatus is the state of one active budget
type BudgetStatus struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Spent      float64 `json:"spent"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// GoalProgress is the state of one active goal
type GoalProgress struct {
	Name          string  `json:"name"`
	Target        float64 `json:"target"`
	Current       float64 `json:"current"`
	Percentage    float64 `json:"percentage"`
	DaysRemaining int     `json:"days_remaining"`
}

// CategorySpend is the absolute expense total for one category
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// SpendingInsights summarizes spending patterns for personalization
type SpendingInsights struct {
	SpendingPatterns []CategorySpend `json:"spending_patterns"`
	Insights         []string        `json:"insights"`
	Recommendations  []string        `json:"recommendations"`
}
