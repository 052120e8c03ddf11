package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/advice"
)

// --- financial_planner ---

// PlannerStage recommends category budgets, generated when possible
type PlannerStage struct {
	generator interfaces.TextGenerator
	timeout   time.Duration
	logger    *common.Logger
}

func (p *PlannerStage) Name() string { return models.StageFinancialPlanner }

func (p *PlannerStage) Run(ctx context.Context, state *State) error {
	var plan models.BudgetPlan
	err := advice.GenerateObject(ctx, p.generator, plannerPrompt(state.Snapshot), p.timeout, &plan)
	if err == nil && len(plan.Recommendations) == 0 {
		err = errors.New("plan has no recommendations")
	}
	if err != nil {
		p.logger.Warn().Str("user_id", state.UserID).Err(err).Msg("Planner generation unavailable, using standard plan")
		state.Plan = FallbackPlan(state.Snapshot.MonthlyIncome)
		return nil
	}

	if plan.Insights == nil {
		plan.Insights = []string{}
	}
	plan.Source = models.AdviceGenerated
	state.Plan = &plan
	return nil
}

// FallbackPlan is the standard 15/10 category split with 20% saved
func FallbackPlan(income float64) *models.BudgetPlan {
	return &models.BudgetPlan{
		Recommendations: []models.BudgetRecommendation{
			{Category: "Food & Dining", RecommendedAmount: income * 0.15, Reasoning: "Standard recommendation for food expenses"},
			{Category: "Transportation", RecommendedAmount: income * 0.10, Reasoning: "Standard recommendation for transportation"},
		},
		TotalRecommendedBudget: income * 0.80,
		SavingsSuggestion:      income * 0.20,
		Insights: []string{
			"Consider setting aside 20% of income for savings",
			"Track expenses regularly to stay within budget",
		},
		Source: models.AdviceFallback,
	}
}

func plannerPrompt(snap *models.FinancialSnapshot) string {
	var b strings.Builder
	b.WriteString("You are a financial planner. Recommend monthly budgets per category using the 50/30/20 rule ")
	b.WriteString("(50% needs, 30% wants, 20% savings) and a 3-6 month emergency fund.\n\n")
	fmt.Fprintf(&b, "Total Balance: $%s\n", advice.Money(snap.TotalBalance))
	fmt.Fprintf(&b, "Monthly Income: $%s\n", advice.Money(snap.MonthlyIncome))
	fmt.Fprintf(&b, "Monthly Expenses: $%s\n", advice.Money(snap.MonthlyExpenses))
	fmt.Fprintf(&b, "Transaction Categories: %s\n", strings.Join(snap.TransactionCategories, ", "))
	if len(snap.BudgetOvershoots) > 0 {
		fmt.Fprintf(&b, "Budget Overshoots: %s\n", strings.Join(snap.BudgetOvershoots, ", "))
	}
	b.WriteString("\nRespond with a single JSON object with:\n")
	b.WriteString("- recommendations: list of {category, recommended_amount (number), reasoning}\n")
	b.WriteString("- total_recommended_budget: number\n")
	b.WriteString("- savings_suggestion: number\n")
	b.WriteString("- insights: list of strings\n")
	return b.String()
}

// --- risk_assessment ---

// RiskStage scores risk strictly, so a malformed feature vector aborts the run
type RiskStage struct {
	risk interfaces.RiskService
}

func (r *RiskStage) Name() string { return models.StageRiskAssessment }

func (r *RiskStage) Run(ctx context.Context, state *State) error {
	score, err := r.risk.ScoreStrict(ctx, state.Snapshot)
	if err != nil {
		return err
	}
	state.Risk = Assess(score)
	return nil
}

// Assess expands a score into the investment guidance for its level
func Assess(score *models.RiskScore) *models.RiskAssessment {
	return &models.RiskAssessment{
		RiskScore: score.Score,
		RiskLevel: score.Level,
		Recommendations: []string{
			"Diversify your investment portfolio",
			"Consider your time horizon before investing",
			"Start with small amounts to build confidence",
		},
		SuitableInvestmentTypes: InvestmentTypes(score.Level),
		Warnings: []string{
			"Never invest more than you can afford to lose",
			"Consult with a financial advisor for complex decisions",
		},
	}
}

// InvestmentTypes lists the instruments suited to a risk level
func InvestmentTypes(level string) []string {
	switch level {
	case models.RiskLow:
		return []string{"Savings Account", "CDs", "Bonds", "Conservative Mutual Funds"}
	case models.RiskMedium:
		return []string{"Balanced Portfolio", "ETFs", "Moderate Mutual Funds"}
	default:
		return []string{"Stocks", "Aggressive Growth Funds"}
	}
}

// --- motivation ---

// MotivationStage generates encouragement, falling back to the synthesized motivation
type MotivationStage struct {
	generator interfaces.TextGenerator
	timeout   time.Duration
	logger    *common.Logger
}

func (m *MotivationStage) Name() string { return models.StageMotivation }

func (m *MotivationStage) Run(ctx context.Context, state *State) error {
	var out models.Motivation
	err := advice.GenerateObject(ctx, m.generator, motivationPrompt(state), m.timeout, &out)
	if err == nil && (strings.TrimSpace(out.Quote) == "" || strings.TrimSpace(out.Tip) == "") {
		err = errors.New("motivation is missing quote or tip")
	}
	if err != nil {
		m.logger.Warn().Str("user_id", state.UserID).Err(err).Msg("Motivation generation unavailable, synthesizing")
		state.Motivation = advice.SynthesizeMotivation(state.Snapshot)
		return nil
	}

	if out.ProgressInsights == nil {
		out.ProgressInsights = []string{}
	}
	out.Source = models.AdviceGenerated
	state.Motivation = &out
	return nil
}

func motivationPrompt(state *State) string {
	snap := state.Snapshot
	income := snap.MonthlyIncome

	var b strings.Builder
	b.WriteString("You are a personal finance coach. Use the user's actual numbers.\n\n")
	fmt.Fprintf(&b, "- Total Account Balance: $%s\n", advice.Money(snap.TotalBalance))
	fmt.Fprintf(&b, "- Monthly Income: $%s\n", advice.Money(income))
	fmt.Fprintf(&b, "- Monthly Expenses: $%s\n", advice.Money(snap.MonthlyExpenses))
	fmt.Fprintf(&b, "- Savings Rate: %.1f%%\n", snap.SavingsRatePercent())
	fmt.Fprintf(&b, "- Active Goals: %d\n", snap.GoalsCount)
	if state.Risk != nil {
		fmt.Fprintf(&b, "- Risk Level: %s\n", state.Risk.RiskLevel)
	}
	if state.Plan != nil {
		fmt.Fprintf(&b, "- Suggested Monthly Savings: $%s\n", advice.Money(state.Plan.SavingsSuggestion))
	}

	b.WriteString("\nGOAL PROGRESS:\n")
	if len(snap.GoalProgress) == 0 {
		b.WriteString("No active goals\n")
	}
	for _, g := range snap.GoalProgress {
		fmt.Fprintf(&b, "- %s: $%s / $%s (%.1f%% complete) - %d days remaining\n",
			g.Name, advice.Money(g.Current), advice.Money(g.Target), g.Percentage, g.DaysRemaining)
	}

	b.WriteString("\nBUDGET STATUS:\n")
	if len(snap.BudgetStatus) == 0 {
		b.WriteString("No active budgets\n")
	}
	for i, bs := range snap.BudgetStatus {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: %.1f%% used\n", bs.Category, bs.Percentage)
	}

	b.WriteString("\nRespond with a single JSON object with:\n")
	b.WriteString("- quote: an inspiring financial quote\n")
	fmt.Fprintf(&b, "- tip: a practical tip using their numbers (e.g. saving $%s/month is 20%% of income)\n", advice.Money(income*0.2))
	b.WriteString("- achievement_message: string or null\n")
	b.WriteString("- progress_insights: list of strings about their goals and budgets\n")
	return b.String()
}

// --- notification ---

// NotificationStage raises overshoot and pending transaction alerts
type NotificationStage struct{}

func (NotificationStage) Name() string { return models.StageNotification }

func (NotificationStage) Run(_ context.Context, state *State) error {
	state.Alerts = Alerts(state.Snapshot)
	return nil
}

// Alerts returns one warning per active budget spent past its amount and one
// reminder when any transaction is pending
func Alerts(snap *models.FinancialSnapshot) []models.Alert {
	alerts := []models.Alert{}
	for _, b := range snap.BudgetStatus {
		if b.Spent <= b.Amount {
			continue
		}
		alerts = append(alerts, models.Alert{
			Type:     models.AlertBudgetOvershoot,
			Title:    "Budget Exceeded: " + b.Category,
			Message:  fmt.Sprintf("You've exceeded your %s budget by $%.2f", b.Category, b.Spent-b.Amount),
			Severity: models.SeverityWarning,
		})
	}
	if n := snap.PendingTransactions; n > 0 {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertBillReminder,
			Title:    "Pending Transactions",
			Message:  fmt.Sprintf("You have %d pending transaction(s) that need attention", n),
			Severity: models.SeverityInfo,
		})
	}
	return alerts
}

// --- aggregate ---

// AggregateStage merges every stage output into the result
type AggregateStage struct {
	now func() time.Time
}

func (AggregateStage) Name() string { return models.StageAggregate }

func (a AggregateStage) Run(_ context.Context, state *State) error {
	if state.Plan == nil || state.Risk == nil || state.Motivation == nil {
		return errors.New("aggregate reached before every stage produced output")
	}
	stages := append(append([]string{}, state.Completed...), models.StageAggregate)
	state.Result = &models.PipelineResult{
		RunID:            state.RunID,
		UserID:           state.UserID,
		FinancialPlanner: state.Plan,
		RiskAssessment:   state.Risk,
		Motivation:       state.Motivation,
		Notification:     state.Alerts,
		Stages:           stages,
		StartedAt:        state.StartedAt,
		CompletedAt:      a.now(),
	}
	return nil
}
