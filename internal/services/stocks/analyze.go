package stocks

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/signals"
)

// Signal reasons
const (
	ReasonOversold   = "Oversold (RSI < 30) - potential buying opportunity"
	ReasonOverbought = "Overbought (RSI > 70) - consider taking profits"
	ReasonLowPE      = "Low P/E ratio - potentially undervalued"
	ReasonHighPE     = "High P/E ratio - may be overvalued"
)

// analyze fetches one symbol and derives its call. It returns nil when the
// price history is unavailable; fundamentals and technicals are optional.
func (s *Service) analyze(ctx context.Context, symbol string) *models.StockRecommendation {
	bars, err := s.client.GetPriceHistory(ctx, symbol, s.history)
	if err != nil || len(bars) == 0 {
		s.logger.Debug().Str("symbol", symbol).Err(err).Msg("No price history, skipping symbol")
		return nil
	}

	var fundamentals *models.Fundamentals
	if f, err := s.client.GetFundamentals(ctx, symbol); err != nil || f == nil {
		s.logger.Debug().Str("symbol", symbol).Err(err).Msg("Fundamentals unavailable")
	} else {
		// copied so the 52-week fill never touches client-owned data
		copied := *f
		fundamentals = &copied
	}

	technical, err := s.client.GetTechnical(ctx, symbol)
	if err != nil || technical == nil {
		technical = localTechnical(bars)
	}

	rec := &models.StockRecommendation{
		Symbol:         symbol,
		Name:           symbol,
		CurrentPrice:   round2(signals.LastClose(bars)),
		PriceChange52W: round2(signals.Change52Week(bars)),
		Fundamentals:   fundamentals,
		Technical:      technical,
	}
	if fundamentals != nil {
		if fundamentals.Name != "" {
			rec.Name = fundamentals.Name
		}
		rec.Sector = fundamentals.Sector
		rec.Industry = fundamentals.Industry
		rec.MarketCap = fundamentals.MarketCap
		if fundamentals.High52W == 0 {
			fundamentals.High52W = signals.High52Week(bars)
		}
		if fundamentals.Low52W == 0 {
			fundamentals.Low52W = signals.Low52Week(bars)
		}
	}

	rec.Recommendation, rec.Reasons = Evaluate(technical, signals.Change52Week(bars), fundamentals)
	return rec
}

// localTechnical computes RSI from the price history when the provider has none
func localTechnical(bars []models.EODBar) *models.Technical {
	rsi, err := signals.RSI(bars, signals.DefaultRSIPeriod)
	if err != nil {
		return nil
	}
	return &models.Technical{RSI: rsi, Date: bars[len(bars)-1].Date, Source: "computed"}
}

// Evaluate applies the signal rules in order: RSI, 52-week momentum, P/E,
// then dividend yield. Later rules only move a HOLD.
func Evaluate(technical *models.Technical, change52w float64, fundamentals *models.Fundamentals) (string, []string) {
	rec := models.RecommendHold
	reasons := []string{}

	if technical != nil && technical.RSI != 0 {
		switch signals.ClassifyRSI(technical.RSI) {
		case signals.RSIOversold:
			rec = models.RecommendBuy
			reasons = append(reasons, ReasonOversold)
		case signals.RSIOverbought:
			rec = models.RecommendSell
			reasons = append(reasons, ReasonOverbought)
		}
	}

	if change52w > 20 {
		reasons = append(reasons, fmt.Sprintf("Strong 52-week performance (+%.1f%%)", change52w))
		if rec == models.RecommendHold {
			rec = models.RecommendBuy
		}
	} else if change52w < -20 {
		reasons = append(reasons, fmt.Sprintf("Weak 52-week performance (%.1f%%)", change52w))
		if rec == models.RecommendHold {
			rec = models.RecommendSell
		}
	}

	if fundamentals != nil {
		if pe := fundamentals.PERatio; pe != 0 {
			if pe < 15 {
				reasons = append(reasons, ReasonLowPE)
				if rec == models.RecommendHold {
					rec = models.RecommendBuy
				}
			} else if pe > 25 {
				reasons = append(reasons, ReasonHighPE)
			}
		}
		if fundamentals.DividendYield > 3 {
			reasons = append(reasons, fmt.Sprintf("Good dividend yield (%.2f%%)", fundamentals.DividendYield))
		}
	}

	return rec, reasons
}

var (
	etfSymbols       = []string{"SPY", "VTI", "VOO", "QQQ"}
	techSymbols      = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA"}
	defensiveSymbols = []string{"JNJ", "WMT", "PG", "KO"}
	financialSymbols = []string{"JPM", "BAC", "GS"}
)

// WhyRecommended explains a symbol's place in the basket under the current market
func WhyRecommended(symbol string, market *models.MarketSnapshot) string {
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}
	var reasons []string

	switch {
	case slices.Contains(etfSymbols, symbol):
		switch {
		case market.YieldCurveInverted:
			reasons = append(reasons, "Diversified ETF provides protection during uncertain times")
		case market.VIX > 20:
			reasons = append(reasons, "Broad market exposure reduces individual stock risk")
		default:
			reasons = append(reasons, "Diversified exposure to entire market")
		}
	case slices.Contains(techSymbols, symbol):
		switch {
		case market.Sentiment == models.SentimentBullish:
			reasons = append(reasons, "Strong growth potential in bullish market")
		case market.VIX > 20:
			reasons = append(reasons, "Large-cap tech provides stability during volatility")
		default:
			reasons = append(reasons, "Solid fundamentals and growth prospects")
		}
	case slices.Contains(defensiveSymbols, symbol):
		if market.YieldCurveInverted || market.VIX > 25 {
			reasons = append(reasons, "Defensive sector provides stability during economic uncertainty")
		} else {
			reasons = append(reasons, "Stable dividends and consistent performance")
		}
	case slices.Contains(financialSymbols, symbol):
		if market.Treasury10Y > 4 {
			reasons = append(reasons, "Benefit from rising interest rates")
		} else {
			reasons = append(reasons, "Strong financial position")
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Well-positioned for current market conditions")
	}
	return strings.Join(reasons, "; ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
