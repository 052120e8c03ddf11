package advice

import (
	"fmt"
	"strings"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

var (
	fallbackRecommendations = []string{
		"Review your financial goals regularly",
		"Track expenses daily",
		"Build emergency fund first",
	}
	fallbackConsiderations = []string{
		"Your current savings rate",
		"Budget overshoots",
		"Goal progress",
	}
	fallbackNextSteps = []string{
		"Set up automatic savings",
		"Review budgets weekly",
		"Track all expenses",
	}
)

// Synthesize builds advice from the snapshot and market alone. Branches are
// checked in order: investment with ranked stocks, saving, budget, debt,
// investment without stocks, general.
func Synthesize(snap *models.FinancialSnapshot, market *models.MarketSnapshot, question string, stocks []*models.StockRecommendation) *models.AdviceResult {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}

	q := strings.ToLower(question)
	summary := market.SummaryText()
	rate := market.Treasury10Y
	inflation := market.InflationExpectation

	var answer string
	switch {
	case IsInvestmentQuestion(question) && len(stocks) > 0:
		answer = stockAnswer(snap, stocks)
	case strings.Contains(q, "save") || strings.Contains(q, "saving"):
		answer = fmt.Sprintf("Based on your financial situation and current market conditions (%s), I recommend: 1) Automate savings transfers, 2) Reduce dining out expenses, 3) Review and cancel unused subscriptions. With current interest rates at %.2f%% and inflation at %s levels, start by setting aside at least 20%% of your income for savings. Consider high-yield savings accounts for better returns.",
			summary, rate, inflation)
	case strings.Contains(q, "budget"):
		answer = fmt.Sprintf("To improve your budgeting in the current economic environment: 1) Track all expenses daily (especially important with %s inflation), 2) Review budgets weekly, 3) Adjust budgets based on actual spending. Focus on categories where you're overspending. Given current market conditions, consider allocating more to necessities.",
			inflation)
	case strings.Contains(q, "debt"):
		answer = fmt.Sprintf("To pay off debt faster in the current environment: 1) Prioritize high-interest debt (especially important with interest rates at %.2f%%), 2) Consider debt consolidation if rates are favorable, 3) Increase monthly payments. The debt snowball or avalanche method can help. Lock in fixed rates if possible.",
			rate)
	case IsInvestmentQuestion(question):
		answer = fmt.Sprintf("Before investing in the current %s market with %s volatility: 1) Build an emergency fund (3-6 months expenses), 2) Pay off high-interest debt, 3) Start with low-risk investments using dollar-cost averaging. Diversification is key. Given current market conditions, consider gradual entry rather than lump-sum investments.",
			market.Sentiment, market.VolatilityBand())
	default:
		answer = fmt.Sprintf("Based on your financial data and current market conditions (%s), I recommend: 1) Track expenses regularly, 2) Build an emergency fund (especially important in current economic environment), 3) Set clear financial goals. Current interest rates are %.2f%% and inflation is %s. Would you like more specific advice on any area?",
			summary, rate, inflation)
	}

	motivation := SynthesizeMotivation(snap)

	result := &models.AdviceResult{
		Answer:          answer,
		Recommendations: append(append([]string{}, fallbackRecommendations...), motivation.Tip),
		Considerations:  append([]string{}, fallbackConsiderations...),
		NextSteps:       append([]string{}, fallbackNextSteps...),
		MarketContext:   summary,
		Source:          models.AdviceFallback,
	}
	if len(snap.GoalProgress) > 0 {
		// goal insights only; the trailing expense reminder is already a next step
		insights := motivation.ProgressInsights
		result.Considerations = append(result.Considerations, insights[:len(insights)-1]...)
	}
	return result
}

func stockAnswer(snap *models.FinancialSnapshot, stocks []*models.StockRecommendation) string {
	available := snap.Available()
	suggestion := 0.0
	if available > 0 {
		suggestion = available * 0.3
	}

	lines := make([]string, 0, 5)
	for _, s := range firstN(stocks, 5) {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s at $%.2f - %s",
			s.Symbol, s.Name, s.Recommendation, s.CurrentPrice, strings.Join(firstN(s.Reasons, 2), ", ")))
	}
	return fmt.Sprintf("Based on your budget (monthly income: $%s, expenses: $%s), you have $%s available. Here are my investment recommendations for next month:\n\n%s\n\nWith your current savings rate of %.1f%%, consider investing $%s (30%% of available funds) in these stocks. Always diversify and do your own research before investing.",
		Money(snap.MonthlyIncome), Money(snap.MonthlyExpenses), Money(available),
		strings.Join(lines, "\n"), snap.SavingsRatePercent(), Money(suggestion))
}

// Motivation quotes
const (
	DefaultQuote = "The best time to plant a tree was 20 years ago. The second best time is now."
	SaverQuote   = "You're doing great! Consistent saving is the foundation of financial freedom."
)

// SynthesizeMotivation builds the savings-rate conditioned quote and tip and
// the goal-progress insights
func SynthesizeMotivation(snap *models.FinancialSnapshot) *models.Motivation {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	income := snap.MonthlyIncome
	savings := snap.SavingsRatePercent()

	m := &models.Motivation{
		Quote:  DefaultQuote,
		Tip:    fmt.Sprintf("Automate your savings by setting up automatic transfers to save $%s per month (20%% of $%s income).", Money(income*0.2), Money(income)),
		Source: models.AdviceFallback,
	}
	switch {
	case savings >= 20:
		m.Quote = SaverQuote
		m.Tip = "Continue maintaining your excellent savings rate and consider investing surplus funds."
	case savings < 10:
		m.Tip = fmt.Sprintf("With your current savings rate of %.1f%%, aim to increase it gradually. Start by saving $%s per month (10%% of income).", savings, Money(income*0.1))
	}

	if savings >= 15 {
		msg := fmt.Sprintf("Great job maintaining a %.1f%% savings rate!", savings)
		m.AchievementMessage = &msg
	}

	goals := snap.GoalProgress
	if len(goals) > 0 {
		plural := ""
		if len(goals) > 1 {
			plural = "s"
		}
		m.ProgressInsights = append(m.ProgressInsights, fmt.Sprintf("You're making progress on %d goal%s! Keep up the momentum.", len(goals), plural))
		if goals[0].Percentage > 50 {
			m.ProgressInsights = append(m.ProgressInsights, fmt.Sprintf("You're over halfway to your %s! Stay focused!", goals[0].Name))
		}
	} else {
		m.ProgressInsights = append(m.ProgressInsights, "You're tracking your finances! Consider setting a financial goal to stay motivated.")
	}
	m.ProgressInsights = append(m.ProgressInsights, "Keep tracking your expenses to stay on budget.")

	return m
}
