package risk

import (
	"math"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// FeatureCount is the length of the vector produced by ExtractFeatures
const FeatureCount = 10

// ExtractFeatures builds the normalized feature vector the learned model was trained on:
//
//	0 savings rate (0.5 when not positive)
//	1 expense ratio / 2, capped at 1
//	2 balance-to-income / 12, capped at 1
//	3 income / 10000, capped at 1 (0.5 when no income)
//	4 expenses / 10000, capped at 1 (0.5 when no expenses)
//	5 accounts / 10
//	6 active budgets / 10
//	7 goals / 10
//	8 transaction categories / 20
//	9 stability placeholder, fixed at 0.5
func ExtractFeatures(snap *models.FinancialSnapshot) []float64 {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	income := snap.MonthlyIncome
	expenses := snap.MonthlyExpenses

	savingsRate, expenseRatio, balanceToIncome := 0.0, 1.0, 0.0
	if income > 0 {
		savingsRate = (income - expenses) / income
		expenseRatio = expenses / income
		balanceToIncome = snap.TotalBalance / income
	}

	f := make([]float64, FeatureCount)

	f[0] = 0.5
	if savingsRate > 0 {
		f[0] = math.Min(savingsRate, 1)
	}
	f[1] = math.Min(expenseRatio, 2) / 2
	f[2] = math.Min(balanceToIncome, 12) / 12
	f[3] = 0.5
	if income > 0 {
		f[3] = math.Min(income/10000, 1)
	}
	f[4] = 0.5
	if expenses > 0 {
		f[4] = math.Min(expenses/10000, 1)
	}
	f[5] = float64(snap.AccountsCount) / 10
	f[6] = float64(snap.ActiveBudgetsCount) / 10
	f[7] = float64(snap.GoalsCount) / 10
	f[8] = float64(len(snap.TransactionCategories)) / 20
	f[9] = 0.5

	return f
}
