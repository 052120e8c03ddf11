package models

import "time"

// Pipeline stage names. They double as the JSON keys of PipelineResult.
const (
	StageFinancialPlanner = "financial_planner"
	StageRiskAssessment   = "risk_assessment"
	StageMotivation       = "motivation"
	StageNotification     = "notification"
	StageAggregate        = "aggregate"
)

// Alert types
const (
	AlertBudgetOvershoot = "budget_overshoot"
	AlertBillReminder    = "bill_reminder"
)

// Alert severities
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Stage execution statuses
const (
	ExecutionSuccess = "success"
	ExecutionFailed  = "failed"
)

// BudgetPlan is the financial planner stage output
type BudgetPlan struct {
	Recommendations        []BudgetRecommendation `json:"recommendations"`
	TotalRecommendedBudget float64                `json:"total_recommended_budget"`
	SavingsSuggestion      float64                `json:"savings_suggestion"`
	Insights               []string               `json:"insights"`
	Source                 string                 `json:"source"`
}

// BudgetRecommendation is a suggested monthly amount for a category
type BudgetRecommendation struct {
	Category          string  `json:"category"`
	RecommendedAmount float64 `json:"recommended_amount"`
	Reasoning         string  `json:"reasoning"`
}

// RiskAssessment is the risk stage output
type RiskAssessment struct {
	RiskScore               float64  `json:"risk_score"`
	RiskLevel               string   `json:"risk_level"`
	Recommendations         []string `json:"recommendations"`
	SuitableInvestmentTypes []string `json:"suitable_investment_types"`
	Warnings                []string `json:"warnings"`
}

// Motivation is the motivational stage output
type Motivation struct {
	Quote              string   `json:"quote"`
	Tip                string   `json:"tip"`
	AchievementMessage *string  `json:"achievement_message"`
	ProgressInsights   []string `json:"progress_insights"`
	Source             string   `json:"source"`
}

// Alert is a notification raised by the notification stage
type Alert struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// PipelineResult aggregates every stage output keyed by stage name
type PipelineResult struct {
	RunID            string          `json:"run_id"`
	UserID           string          `json:"user_id"`
	FinancialPlanner *BudgetPlan     `json:"financial_planner"`
	RiskAssessment   *RiskAssessment `json:"risk_assessment"`
	Motivation       *Motivation     `json:"motivation"`
	Notification     []Alert         `json:"notification"`
	Stages           []string        `json:"stages"`
	StartedAt        time.Time       `json:"started_at"`
	CompletedAt      time.Time       `json:"completed_at"`
}

// StageExecution is one recorded stage run
type StageExecution struct {
	RunID      string        `json:"run_id"`
	UserID     string        `json:"user_id"`
	Stage      string        `json:"stage"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	ExecutedAt time.Time     `json:"executed_at"`
}
