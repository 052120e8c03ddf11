package models

// Health statuses
const (
	HealthExcellent      = "Excellent"
	HealthGood           = "Good"
	HealthFair           = "Fair"
	HealthNeedsAttention = "Needs Attention"
)

// HealthScore is a 0-100 summary of budget, savings, emergency fund and goal status
type HealthScore struct {
	Score               int      `json:"score"`
	Status              string   `json:"status"`
	Issues              []string `json:"issues"`
	Recommendations     []string `json:"recommendations"`
	SavingsRate         float64  `json:"savings_rate"` // percent
	EmergencyFundMonths float64  `json:"emergency_fund_months"`
	BudgetOvershoots    []string `json:"budget_overshoots"`
}
