package models

import (
	"strings"
	"time"
)

// Market sentiment values
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// Inflation expectation values
const (
	InflationLow      = "low"
	InflationModerate = "moderate"
	InflationHigh     = "high"
)

// Market slices that can degrade independently
const (
	SliceIndices    = "indices"
	SliceYields     = "yields"
	SliceVolatility = "volatility"
	SliceInflation  = "inflation"
)

// EODBar represents a single end-of-day price bar
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// IndexPerformance is the latest move of one market index
type IndexPerformance struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	ChangePct float64 `json:"change_pct"`
	Trend     string  `json:"trend"` // "up" or "down"
}

// Yields holds treasury yields and the macro proxies fetched alongside them.
// Zero means the value was unavailable.
type Yields struct {
	Treasury10Y float64 `json:"treasury_10y"`
	Treasury3M  float64 `json:"treasury_3m"`
	GoldPrice   float64 `json:"gold_price"`
	OilPrice    float64 `json:"oil_price"`
	USDIndex    float64 `json:"usd_index"`
}

// InflationProxy is the 30-day move of an inflation-protected bond fund
type InflationProxy struct {
	Symbol    string  `json:"symbol"`
	Current   float64 `json:"current"`
	Change30D float64 `json:"change_30d"`
}

// MarketSnapshot is a normalized view of current market conditions
type MarketSnapshot struct {
	Indices              []IndexPerformance `json:"indices"`
	VIX                  float64            `json:"vix"`
	Treasury10Y          float64            `json:"treasury_10y"`
	Treasury3M           float64            `json:"treasury_3m"`
	YieldCurveInverted   bool               `json:"yield_curve_inverted"`
	GoldPrice            float64            `json:"gold_price"`
	OilPrice             float64            `json:"oil_price"`
	USDIndex             float64            `json:"usd_index"`
	TIPSChange30D        float64            `json:"tips_change_30d"`
	InflationExpectation string             `json:"inflation_expectation"`
	Sentiment            string             `json:"sentiment"`
	Summary              []string           `json:"summary"`
	Degraded             []string           `json:"degraded,omitempty"`
	FetchedAt            time.Time          `json:"fetched_at"`
}

// NeutralMarketSnapshot returns the all-defaults snapshot used when nothing could be fetched
func NeutralMarketSnapshot() *MarketSnapshot {
	return &MarketSnapshot{
		InflationExpectation: InflationModerate,
		Sentiment:            SentimentNeutral,
		Summary:              []string{},
	}
}

// VolatilityBand classifies the VIX as "high" (>20), "low" (<15) or "moderate"
func (m *MarketSnapshot) VolatilityBand() string {
	if m == nil {
		return "moderate"
	}
	switch {
	case m.VIX > 20:
		return "high"
	case m.VIX < 15:
		return "low"
	default:
		return "moderate"
	}
}

// Index returns the performance for symbol, or nil
func (m *MarketSnapshot) Index(symbol string) *IndexPerformance {
	if m == nil {
		return nil
	}
	for i := range m.Indices {
		if m.Indices[i].Symbol == symbol {
			return &m.Indices[i]
		}
	}
	return nil
}

// Fundamentals holds the company data used by the stock ranker
type Fundamentals struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"` // percent
	MarketCap     float64 `json:"market_cap"`
	EPS           float64 `json:"eps"`
	Beta          float64 `json:"beta"`
	High52W       float64 `json:"52_week_high"`
	Low52W        float64 `json:"52_week_low"`
	IsETF         bool    `json:"is_etf"`
}

// Technical holds technical indicators for a symbol
type Technical struct {
	RSI    float64   `json:"rsi"`
	Date   time.Time `json:"date"`
	Source string    `json:"source"` // "provider" or "computed"
}

// SummaryText joins the summary lines for embedding in prose
func (m *MarketSnapshot) SummaryText() string {
	if m == nil || len(m.Summary) == 0 {
		return "moderate market conditions"
	}
	return strings.Join(m.Summary, ", ")
}
