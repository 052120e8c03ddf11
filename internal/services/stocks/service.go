// Package stocks ranks instruments against the current market regime
package stocks

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Basket names
const (
	BasketDefensive = "defensive"
	BasketMixed     = "mixed"
	BasketGrowth    = "growth"
	BasketBalanced  = "balanced"
)

const (
	maxBasket          = 10
	maxRecommendations = 8
	maxScreenResults   = 10
	defaultMaxPE       = 50
	defaultConcurrency = 4
)

var baskets = map[string][]string{
	BasketDefensive: {"SPY", "VTI", "JNJ", "WMT", "PG", "KO", "PEP"},
	BasketMixed:     {"SPY", "QQQ", "MSFT", "AAPL", "JNJ", "VTI"},
	BasketGrowth:    {"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META"},
	BasketBalanced:  {"SPY", "VTI", "AAPL", "MSFT", "JPM", "JNJ"},
}

// ScreenUniverse is the fixed set of symbols the screener analyses
var ScreenUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA",
	"JPM", "BAC", "WFC", "GS", "MS",
	"JNJ", "PFE", "UNH", "ABBV",
	"WMT", "HD", "MCD", "NKE",
}

// Service implements interfaces.StockService
type Service struct {
	client      interfaces.MarketDataClient
	concurrency int
	history     time.Duration
	logger      *common.Logger
}

// NewService creates a new stock service
func NewService(client interfaces.MarketDataClient, config common.StocksConfig, logger *common.Logger) *Service {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		client:      client,
		concurrency: concurrency,
		history:     config.GetHistory(),
		logger:      logger,
	}
}

// SelectBasket picks the candidate list for the market regime. Checks run in
// priority order: inversion or VIX>25, bearish or VIX>20, bullish, otherwise balanced.
func SelectBasket(market *models.MarketSnapshot) (string, []string) {
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}
	name := BasketBalanced
	switch {
	case market.YieldCurveInverted || market.VIX > 25:
		name = BasketDefensive
	case market.Sentiment == models.SentimentBearish || market.VIX > 20:
		name = BasketMixed
	case market.Sentiment == models.SentimentBullish:
		name = BasketGrowth
	}
	symbols := baskets[name]
	if len(symbols) > maxBasket {
		symbols = symbols[:maxBasket]
	}
	return name, slices.Clone(symbols)
}

// Recommend ranks the regime's basket. Symbols without price history are
// dropped; the result holds at most 8 items ordered by call then reason count.
func (s *Service) Recommend(ctx context.Context, market *models.MarketSnapshot, riskTolerance string, investmentAmount *float64) []*models.StockRecommendation {
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}
	basket, symbols := SelectBasket(market)

	s.logger.Debug().
		Str("basket", basket).
		Str("risk_tolerance", riskTolerance).
		Strs("symbols", symbols).
		Msg("Ranking stock basket")

	volatility := "low"
	if market.VIX > 20 {
		volatility = "high"
	}

	recs := s.analyzeAll(ctx, symbols)
	for _, rec := range recs {
		rec.WhyRecommended = WhyRecommended(rec.Symbol, market)
		rec.MarketContext = models.StockMarketContext{
			CurrentSentiment: market.Sentiment,
			Volatility:       volatility,
			Basket:           basket,
		}
	}

	Rank(recs)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	if investmentAmount != nil && *investmentAmount > 0 {
		allocate(recs, *investmentAmount)
	}

	return recs
}

// Screen analyses the fixed universe and filters by sector, market cap and P/E.
// Results stay in universe order, capped at 10.
func (s *Service) Screen(ctx context.Context, criteria models.ScreenCriteria) []*models.StockRecommendation {
	maxPE := criteria.MaxPE
	if maxPE <= 0 {
		maxPE = defaultMaxPE
	}

	results := []*models.StockRecommendation{}
	for _, rec := range s.analyzeAll(ctx, ScreenUniverse) {
		if len(criteria.Sectors) > 0 && !slices.Contains(criteria.Sectors, rec.Sector) {
			continue
		}
		if criteria.MinMarketCap > 0 && rec.MarketCap < criteria.MinMarketCap {
			continue
		}
		if rec.Fundamentals != nil && rec.Fundamentals.PERatio > maxPE {
			continue
		}
		results = append(results, rec)
		if len(results) == maxScreenResults {
			break
		}
	}
	return results
}

// analyzeAll runs analyze with bounded concurrency and returns the surviving
// results in input order
func (s *Service) analyzeAll(ctx context.Context, symbols []string) []*models.StockRecommendation {
	if s.client == nil {
		return []*models.StockRecommendation{}
	}

	slots := make([]*models.StockRecommendation, len(symbols))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = s.analyze(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	out := make([]*models.StockRecommendation, 0, len(symbols))
	for _, rec := range slots {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// Rank sorts descending by (BUY=3/HOLD=2/SELL=1, reason count), stable on ties
func Rank(recs []*models.StockRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := models.RecommendationRank(recs[i].Recommendation), models.RecommendationRank(recs[j].Recommendation)
		if ri != rj {
			return ri > rj
		}
		return len(recs[i].Reasons) > len(recs[j].Reasons)
	})
}

// allocate splits amount evenly across BUY calls, or across every item when there are none
func allocate(recs []*models.StockRecommendation, amount float64) {
	var targets []*models.StockRecommendation
	for _, rec := range recs {
		if rec.Recommendation == models.RecommendBuy {
			targets = append(targets, rec)
		}
	}
	if len(targets) == 0 {
		targets = recs
	}
	if len(targets) == 0 {
		return
	}
	share := round2(amount / float64(len(targets)))
	for _, rec := range targets {
		rec.Allocation = share
	}
}

// Compile-time check
var _ interfaces.StockService = (*Service)(nil)
