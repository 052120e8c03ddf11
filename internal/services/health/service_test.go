package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/services/snapshot"
)

func TestScore_OvershootScenario(t *testing.T) {
	food := snapshot.BudgetStatus(models.Budget{Category: "Food", Amount: 500, Spent: 600, IsActive: true})
	require.Equal(t, models.BudgetOver, food.Status)

	snap := &models.FinancialSnapshot{
		MonthlyIncome:    5000,
		MonthlyExpenses:  4200,
		SavingsRate:      0.16,
		TotalBalance:     3000,
		BudgetStatus:     []models.BudgetStatus{food},
		BudgetOvershoots: []string{"Food"},
	}

	got := NewService().Score(snap)

	// -10 savings, -5 overshoot, -15 emergency fund (3000/4200 < 3 months)
	assert.Equal(t, 70, got.Score)
	assert.Equal(t, models.HealthGood, got.Status)
	assert.Contains(t, got.Issues, "Budget overshoots in: Food")
	assert.Contains(t, got.Issues, "Savings rate below recommended 20%")
	assert.Contains(t, got.Issues, "Emergency fund below 3 months")
	assert.InDelta(t, 16, got.SavingsRate, 1e-9)
	assert.InDelta(t, 3000.0/4200.0, got.EmergencyFundMonths, 1e-9)
	assert.Equal(t, []string{"Food"}, got.BudgetOvershoots)
}

func TestScore_Healthy(t *testing.T) {
	got := Score(&models.FinancialSnapshot{MonthlyIncome: 5000, MonthlyExpenses: 3000, SavingsRate: 0.4, TotalBalance: 30000})

	assert.Equal(t, 100, got.Score)
	assert.Equal(t, models.HealthExcellent, got.Status)
	assert.Empty(t, got.Issues)
	assert.Empty(t, got.Recommendations)
}

func TestScore_SavingsBands(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		want  int
		issue string
	}{
		{"negative", -0.1, 70, "Spending exceeds income"},
		{"below 10", 0.05, 80, "Low savings rate (<10%)"},
		{"below 20", 0.19, 90, "Savings rate below recommended 20%"},
		{"at 20", 0.2, 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(&models.FinancialSnapshot{SavingsRate: tt.rate})
			assert.Equal(t, tt.want, got.Score)
			if tt.issue != "" {
				assert.Equal(t, []string{tt.issue}, got.Issues)
			} else {
				assert.Empty(t, got.Issues)
			}
		})
	}
}

func TestScore_EmergencyFundBetween3And6(t *testing.T) {
	got := Score(&models.FinancialSnapshot{SavingsRate: 0.3, MonthlyExpenses: 1000, TotalBalance: 4000})

	assert.Equal(t, 95, got.Score)
	assert.Empty(t, got.Issues)
	assert.Equal(t, []string{"Consider increasing emergency fund to 6 months"}, got.Recommendations)
}

func TestScore_NoExpensesSkipsEmergencyFund(t *testing.T) {
	got := Score(&models.FinancialSnapshot{SavingsRate: 0.3, TotalBalance: -500})
	assert.Equal(t, 100, got.Score)
	assert.Zero(t, got.EmergencyFundMonths)
}

func TestScore_GoalsBehind(t *testing.T) {
	snap := &models.FinancialSnapshot{
		SavingsRate: 0.3,
		GoalProgress: []models.GoalProgress{
			{Name: "Car", Percentage: 20, DaysRemaining: 30},
			{Name: "House", Percentage: 20, DaysRemaining: 400},
			{Name: "Trip", Percentage: 60, DaysRemaining: 10},
			{Name: "Laptop", Percentage: 49.9, DaysRemaining: -3},
		},
	}

	got := Score(snap)
	assert.Equal(t, 90, got.Score)
	assert.Equal(t, []string{"Goals behind schedule: Car, Laptop"}, got.Issues)
	assert.Equal(t, []string{"Increase contributions to goals that are behind schedule"}, got.Recommendations)
}

func TestScore_ClampsAtZero(t *testing.T) {
	overshoots := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	got := Score(&models.FinancialSnapshot{SavingsRate: -1, MonthlyExpenses: 100, BudgetOvershoots: overshoots})

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, models.HealthNeedsAttention, got.Status)
}

func TestScore_MonotoneInPenalties(t *testing.T) {
	snap := &models.FinancialSnapshot{SavingsRate: 0.5}
	prev := Score(snap).Score

	for _, cat := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		snap.BudgetOvershoots = append(snap.BudgetOvershoots, cat)
		next := Score(snap).Score
		assert.LessOrEqual(t, next, prev)
		assert.GreaterOrEqual(t, next, 0)
		assert.LessOrEqual(t, next, 100)
		prev = next
	}
}

func TestScore_NilSnapshot(t *testing.T) {
	got := Score(nil)
	assert.Equal(t, 80, got.Score, "zero savings rate costs 20")
	assert.NotNil(t, got.Issues)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, models.HealthExcellent, Status(80))
	assert.Equal(t, models.HealthGood, Status(79))
	assert.Equal(t, models.HealthGood, Status(60))
	assert.Equal(t, models.HealthFair, Status(40))
	assert.Equal(t, models.HealthNeedsAttention, Status(39))
}
