// Package market aggregates indices, yields, volatility and inflation into one market context
package market

import (
	"context"
	"sync"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Summary lines, in the order they are emitted
const (
	SummaryPositive    = "Markets are showing positive momentum"
	SummaryNegative    = "Markets are showing negative momentum"
	SummaryInverted    = "⚠️ Yield curve is inverted (potential recession indicator)"
	SummaryHighVol     = "High volatility (VIX > 20) - markets are uncertain"
	SummaryLowVol      = "Low volatility (VIX < 15) - markets are relatively calm"
	SummaryInflationUp = "Inflation expectations are elevated"
)

const defaultTimeout = 5 * time.Second

// Service implements interfaces.MarketService
type Service struct {
	client  interfaces.MarketDataClient
	timeout time.Duration
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new market service. timeout bounds each sub-fetch.
func NewService(client interfaces.MarketDataClient, timeout time.Duration, logger *common.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		client:  client,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// GetMarketContext fetches the four market slices concurrently. A failed
// slice keeps its neutral default and is listed in Degraded.
func (s *Service) GetMarketContext(ctx context.Context) *models.MarketSnapshot {
	snap := models.NeutralMarketSnapshot()
	snap.FetchedAt = s.now()

	if s.client == nil {
		snap.Degraded = []string{models.SliceIndices, models.SliceYields, models.SliceVolatility, models.SliceInflation}
		return snap
	}

	var (
		indices   []models.IndexPerformance
		yields    *models.Yields
		vix       float64
		inflation *models.InflationProxy
		failed    [4]bool
	)

	var wg sync.WaitGroup
	fetch := func(i int, slice string, fn func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			if err := fn(fctx); err != nil {
				s.logger.Warn().Str("slice", slice).Err(err).Msg("Market fetch failed, using neutral default")
				failed[i] = true
			}
		}()
	}

	fetch(0, models.SliceIndices, func(ctx context.Context) (err error) {
		indices, err = s.client.GetIndices(ctx)
		return err
	})
	fetch(1, models.SliceYields, func(ctx context.Context) (err error) {
		yields, err = s.client.GetYields(ctx)
		return err
	})
	fetch(2, models.SliceVolatility, func(ctx context.Context) (err error) {
		vix, err = s.client.GetVolatility(ctx)
		return err
	})
	fetch(3, models.SliceInflation, func(ctx context.Context) (err error) {
		inflation, err = s.client.GetInflationProxy(ctx)
		return err
	})
	wg.Wait()

	for i, slice := range []string{models.SliceIndices, models.SliceYields, models.SliceVolatility, models.SliceInflation} {
		if failed[i] {
			snap.Degraded = append(snap.Degraded, slice)
		}
	}

	if !failed[0] {
		snap.Indices = indices
	}
	if !failed[1] && yields != nil {
		snap.Treasury10Y = yields.Treasury10Y
		snap.Treasury3M = yields.Treasury3M
		snap.GoldPrice = yields.GoldPrice
		snap.OilPrice = yields.OilPrice
		snap.USDIndex = yields.USDIndex
		snap.YieldCurveInverted = yields.Treasury10Y > 0 && yields.Treasury3M > yields.Treasury10Y
	}
	if !failed[2] {
		snap.VIX = vix
	}
	if !failed[3] && inflation != nil {
		snap.TIPSChange30D = inflation.Change30D
		snap.InflationExpectation = InflationExpectation(inflation.Change30D)
	}

	snap.Sentiment = Sentiment(snap.Indices)
	snap.Summary = Summarize(snap)

	s.logger.Debug().
		Str("sentiment", snap.Sentiment).
		Float64("vix", snap.VIX).
		Bool("inverted", snap.YieldCurveInverted).
		Strs("degraded", snap.Degraded).
		Msg("Market context fetched")

	return snap
}

// Sentiment averages the daily change of the fetched indices: above 1% is
// bullish, below -1% bearish.
func Sentiment(indices []models.IndexPerformance) string {
	if len(indices) == 0 {
		return models.SentimentNeutral
	}
	var sum float64
	for _, idx := range indices {
		sum += idx.ChangePct
	}
	avg := sum / float64(len(indices))
	switch {
	case avg > 1:
		return models.SentimentBullish
	case avg < -1:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// InflationExpectation maps the 30-day TIP change to an expectation level
func InflationExpectation(change30d float64) string {
	switch {
	case change30d > 2:
		return models.InflationHigh
	case change30d > 0:
		return models.InflationModerate
	default:
		return models.InflationLow
	}
}

// Summarize builds the ordered summary lines. A VIX of 0 means missing.
func Summarize(m *models.MarketSnapshot) []string {
	summary := []string{}
	switch m.Sentiment {
	case models.SentimentBullish:
		summary = append(summary, SummaryPositive)
	case models.SentimentBearish:
		summary = append(summary, SummaryNegative)
	}
	if m.YieldCurveInverted {
		summary = append(summary, SummaryInverted)
	}
	if m.VIX > 20 {
		summary = append(summary, SummaryHighVol)
	} else if m.VIX > 0 && m.VIX < 15 {
		summary = append(summary, SummaryLowVol)
	}
	if m.InflationExpectation == models.InflationHigh {
		summary = append(summary, SummaryInflationUp)
	}
	return summary
}

// Compile-time check
var _ interfaces.MarketService = (*Service)(nil)
