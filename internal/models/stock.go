package models

// Recommendation calls
const (
	RecommendBuy  = "BUY"
	RecommendHold = "HOLD"
	RecommendSell = "SELL"
)

// RecommendationRank orders calls for sorting: BUY=3, HOLD=2, SELL=1
func RecommendationRank(rec string) int {
	switch rec {
	case RecommendBuy:
		return 3
	case RecommendSell:
		return 1
	default:
		return 2
	}
}

// StockRecommendation is one ranked instrument with the reasons behind its call
type StockRecommendation struct {
	Symbol         string             `json:"symbol"`
	Name           string             `json:"name"`
	CurrentPrice   float64            `json:"current_price"`
	PriceChange52W float64            `json:"price_change_52w"`
	Recommendation string             `json:"recommendation"`
	Reasons        []string           `json:"reasons"`
	Fundamentals   *Fundamentals      `json:"fundamentals,omitempty"`
	Technical      *Technical         `json:"technical,omitempty"`
	Sector         string             `json:"sector"`
	Industry       string             `json:"industry"`
	MarketCap      float64            `json:"market_cap"`
	WhyRecommended string             `json:"why_recommended"`
	MarketContext  StockMarketContext `json:"market_context"`
	Allocation     float64            `json:"suggested_allocation,omitempty"`
}

// StockMarketContext records the regime a recommendation was made under
type StockMarketContext struct {
	CurrentSentiment string `json:"current_sentiment"`
	Volatility       string `json:"volatility"`
	Basket           string `json:"basket"`
}

// ScreenCriteria filters the screener universe
type ScreenCriteria struct {
	Sectors      []string `json:"sectors"`
	MinMarketCap float64  `json:"min_market_cap"`
	MaxPE        float64  `json:"max_pe"`
}
