package advice

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

var investmentVocabulary = []string{
	"stock", "stocks", "invest", "investment", "investing", "buy stock",
	"which stock", "what stock", "recommend stock", "portfolio", "equity",
	"should i buy", "what to invest", "best stock", "good stock",
	"where to invest", "where should i invest", "how to invest",
	"invest next", "investment opportunities", "investing opportunities",
	"buy shares", "purchase stock", "stock recommendations",
}

// IsInvestmentQuestion reports whether the question mentions any investment term
func IsInvestmentQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, term := range investmentVocabulary {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}

// BuildPrompt renders the generation prompt. Every snapshot figure is
// embedded so the answer can quote real numbers.
func BuildPrompt(snap *models.FinancialSnapshot, market *models.MarketSnapshot, stocks []*models.StockRecommendation, question string) string {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}
	investment := IsInvestmentQuestion(question)

	var b strings.Builder
	b.WriteString("You are an expert personal finance advisor with access to live market data and the user's actual financial data.\n")
	b.WriteString("Use the actual numbers below. Do not give generic or hypothetical advice.\n\n")

	switch {
	case investment && len(stocks) > 0:
		b.WriteString("INVESTMENT QUESTION: the user is asking where to invest. Give specific recommendations using the ranked stocks below, with allocation based on their budget.\n\n")
	case investment:
		b.WriteString("INVESTMENT QUESTION: the user is asking where to invest. Give allocation strategies and the kinds of investments to consider based on their budget.\n\n")
	default:
		b.WriteString("GENERAL FINANCIAL QUESTION: give advice relevant to the user's specific question.\n\n")
	}

	b.WriteString("MARKET CONDITIONS:\n")
	if len(market.Summary) > 0 {
		for _, line := range market.Summary {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	} else {
		b.WriteString("- No notable market signals\n")
	}
	sp500 := "N/A"
	if idx := market.Index("sp500"); idx != nil {
		sp500 = fmt.Sprintf("%.2f%%", idx.ChangePct)
	}
	treasury := "N/A"
	if market.Treasury10Y > 0 {
		treasury = fmt.Sprintf("%.2f%%", market.Treasury10Y)
	}
	curve := "Normal"
	if market.YieldCurveInverted {
		curve = "Inverted (recession risk)"
	}
	fmt.Fprintf(&b, "Market Sentiment: %s\n", market.Sentiment)
	fmt.Fprintf(&b, "S&P 500 Performance: %s\n", sp500)
	fmt.Fprintf(&b, "Volatility Index (VIX): %.2f (%s)\n", market.VIX, market.VolatilityBand())
	fmt.Fprintf(&b, "10-Year Treasury Yield: %s\n", treasury)
	fmt.Fprintf(&b, "Yield Curve Status: %s\n", curve)
	fmt.Fprintf(&b, "Inflation Expectation: %s\n\n", market.InflationExpectation)

	b.WriteString("USER'S FINANCIAL SITUATION:\n")
	fmt.Fprintf(&b, "- Total Account Balance: $%s\n", Money(snap.TotalBalance))
	fmt.Fprintf(&b, "- Monthly Income: $%s\n", Money(snap.MonthlyIncome))
	fmt.Fprintf(&b, "- Monthly Expenses: $%s\n", Money(snap.MonthlyExpenses))
	fmt.Fprintf(&b, "- Savings Rate: %.1f%%\n", snap.SavingsRatePercent())
	fmt.Fprintf(&b, "- Pending Transactions: %d\n", snap.PendingTransactions)
	fmt.Fprintf(&b, "- Active Budgets: %d\n", snap.ActiveBudgetsCount)
	fmt.Fprintf(&b, "- Financial Goals: %d\n", snap.GoalsCount)
	fmt.Fprintf(&b, "- Accounts: %d\n\n", snap.AccountsCount)

	b.WriteString("BUDGET STATUS:\n")
	if len(snap.BudgetStatus) == 0 {
		b.WriteString("No active budgets\n")
	}
	for _, bs := range snap.BudgetStatus {
		fmt.Fprintf(&b, "- %s: $%s spent of $%s budget (%.1f%% used) - Status: %s\n",
			bs.Category, Money(bs.Spent), Money(bs.Amount), bs.Percentage, bs.Status)
	}

	b.WriteString("\nTOP SPENDING CATEGORIES:\n")
	if len(snap.TopSpendingCategories) == 0 {
		b.WriteString("No spending data available\n")
	}
	for _, c := range snap.TopSpendingCategories {
		fmt.Fprintf(&b, "- %s: $%s\n", c.Category, Money(c.Amount))
	}

	b.WriteString("\nBUDGET OVERSHOOTS:\n")
	if len(snap.BudgetOvershoots) == 0 {
		b.WriteString("No budget overshoots\n")
	} else {
		b.WriteString(strings.Join(snap.BudgetOvershoots, ", ") + "\n")
	}

	b.WriteString("\nGOAL PROGRESS:\n")
	if len(snap.GoalProgress) == 0 {
		b.WriteString("No active goals\n")
	}
	for _, g := range snap.GoalProgress {
		fmt.Fprintf(&b, "- %s: $%s / $%s (%.1f%% complete) - %d days remaining\n",
			g.Name, Money(g.Current), Money(g.Target), g.Percentage, g.DaysRemaining)
	}

	if len(stocks) > 0 {
		b.WriteString("\nRANKED STOCKS:\n")
		for _, s := range firstN(stocks, 8) {
			pe, div := "N/A", "N/A"
			if s.Fundamentals != nil {
				if s.Fundamentals.PERatio != 0 {
					pe = fmt.Sprintf("%.2f", s.Fundamentals.PERatio)
				}
				if s.Fundamentals.DividendYield != 0 {
					div = fmt.Sprintf("%.2f%%", s.Fundamentals.DividendYield)
				}
			}
			fmt.Fprintf(&b, "- %s (%s): %s at $%.2f | 52w Change: %.2f%% | Reasons: %s | P/E: %s | Dividend Yield: %s\n",
				s.Symbol, s.Name, s.Recommendation, s.CurrentPrice, s.PriceChange52W,
				strings.Join(firstN(s.Reasons, 2), ", "), pe, div)
		}
	}

	fmt.Fprintf(&b, "\nUSER'S QUESTION: %s\n\n", question)

	b.WriteString("Respond with a single JSON object with these fields:\n")
	if investment {
		fmt.Fprintf(&b, "1. answer: specific investment recommendations. With monthly income of $%s and expenses of $%s, they have $%s available; say how much of it to invest and where.\n",
			Money(snap.MonthlyIncome), Money(snap.MonthlyExpenses), Money(snap.Available()))
		b.WriteString("2. recommendations: specific investments with names, prices and allocation suggestions\n")
	} else {
		b.WriteString("1. answer: a direct answer quoting the actual numbers above\n")
		b.WriteString("2. recommendations: recommendations tailored to their budget overshoots, goals and spending patterns\n")
	}
	b.WriteString("3. considerations: market risks and opportunities under current conditions\n")
	b.WriteString("4. next_steps: actionable steps with dollar amounts or percentages\n")
	fmt.Fprintf(&b, "5. market_context: how current conditions (VIX: %.2f, Rates: %.2f%%) affect them\n", market.VIX, market.Treasury10Y)

	return b.String()
}

// Money formats v with two decimals and thousands separators
func Money(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
