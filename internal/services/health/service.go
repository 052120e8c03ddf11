// Package health scores a snapshot's financial health from 0 to 100
package health

import (
	"fmt"
	"strings"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Service implements interfaces.HealthService
type Service struct{}

// NewService creates a new health service
func NewService() *Service {
	return &Service{}
}

// Score starts at 100 and applies the savings, budget, emergency fund and goal penalties
func (s *Service) Score(snap *models.FinancialSnapshot) *models.HealthScore {
	return Score(snap)
}

// Score is the pure scoring function behind Service.Score
func Score(snap *models.FinancialSnapshot) *models.HealthScore {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}

	score := 100
	issues := []string{}
	recommendations := []string{}

	savings := snap.SavingsRatePercent()
	switch {
	case savings < 0:
		score -= 30
		issues = append(issues, "Spending exceeds income")
		recommendations = append(recommendations, "Reduce expenses immediately")
	case savings < 10:
		score -= 20
		issues = append(issues, "Low savings rate (<10%)")
		recommendations = append(recommendations, "Aim to save at least 20% of income")
	case savings < 20:
		score -= 10
		issues = append(issues, "Savings rate below recommended 20%")
		recommendations = append(recommendations, "Increase savings to 20% of income")
	}

	if n := len(snap.BudgetOvershoots); n > 0 {
		score -= 5 * n
		list := strings.Join(snap.BudgetOvershoots, ", ")
		issues = append(issues, "Budget overshoots in: "+list)
		recommendations = append(recommendations, "Review and reduce spending in: "+list)
	}

	var months float64
	if snap.MonthlyExpenses > 0 {
		months = snap.TotalBalance / snap.MonthlyExpenses
		if months < 3 {
			score -= 15
			issues = append(issues, "Emergency fund below 3 months")
			recommendations = append(recommendations, "Build emergency fund to cover 3-6 months of expenses")
		} else if months < 6 {
			score -= 5
			recommendations = append(recommendations, "Consider increasing emergency fund to 6 months")
		}
	}

	var behind []string
	for _, g := range snap.GoalProgress {
		if g.Percentage < 50 && g.DaysRemaining < 90 {
			behind = append(behind, g.Name)
		}
	}
	if len(behind) > 0 {
		score -= 5 * len(behind)
		issues = append(issues, fmt.Sprintf("Goals behind schedule: %s", strings.Join(behind, ", ")))
		recommendations = append(recommendations, "Increase contributions to goals that are behind schedule")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &models.HealthScore{
		Score:               score,
		Status:              Status(score),
		Issues:              issues,
		Recommendations:     recommendations,
		SavingsRate:         savings,
		EmergencyFundMonths: months,
		BudgetOvershoots:    append([]string{}, snap.BudgetOvershoots...),
	}
}

// Status bands a score: >=80 Excellent, >=60 Good, >=40 Fair
func Status(score int) string {
	switch {
	case score >= 80:
		return models.HealthExcellent
	case score >= 60:
		return models.HealthGood
	case score >= 40:
		return models.HealthFair
	default:
		return models.HealthNeedsAttention
	}
}

// Compile-time check
var _ interfaces.HealthService = (*Service)(nil)
