// Package yahoo provides a keyless market data client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/signals"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// DefaultTickers are the Yahoo symbols used for each market slice
var DefaultTickers = common.MarketTickers{
	SP500:      "^GSPC",
	Nasdaq:     "^IXIC",
	Dow:        "^DJI",
	VIX:        "^VIX",
	Treasury10: "^TNX",
	Treasury3M: "^IRX",
	Gold:       "GC=F",
	Oil:        "CL=F",
	USD:        "DX-Y.NYB",
	TIP:        "TIP",
}

// Client implements interfaces.MarketDataClient against the chart API.
// The chart endpoint carries no fundamentals beyond names and 52-week range,
// and no provider-side technicals.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	tickers    common.MarketTickers
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTickers overrides individual slice tickers
func WithTickers(t common.MarketTickers) ClientOption {
	return func(c *Client) {
		set := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		set(&c.tickers.SP500, t.SP500)
		set(&c.tickers.Nasdaq, t.Nasdaq)
		set(&c.tickers.Dow, t.Dow)
		set(&c.tickers.VIX, t.VIX)
		set(&c.tickers.Treasury10, t.Treasury10)
		set(&c.tickers.Treasury3M, t.Treasury3M)
		set(&c.tickers.Gold, t.Gold)
		set(&c.tickers.Oil, t.Oil)
		set(&c.tickers.USD, t.USD)
		set(&c.tickers.TIP, t.TIP)
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Yahoo chart client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     common.NewSilentLogger(),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		tickers:    DefaultTickers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse is the response structure of the chart API
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		LongName           string  `json:"longName"`
		ShortName          string  `json:"shortName"`
		InstrumentType     string  `json:"instrumentType"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []interface{} `json:"open"`
			High   []interface{} `json:"high"`
			Low    []interface{} `json:"low"`
			Close  []interface{} `json:"close"`
			Volume []interface{} `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(values []interface{}, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return toFloat(values[i])
}

// fetchChart retrieves daily bars for symbol over rng (e.g. "5d", "1y")
func (c *Client) fetchChart(ctx context.Context, symbol, rng string) (*chartResult, []models.EODBar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", c.baseURL, url.PathEscape(symbol), rng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	c.logger.Debug().Str("symbol", symbol).Str("range", rng).Msg("Yahoo chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil, errors.New("yahoo: no data returned")
	}

	result := &chart.Chart.Result[0]
	var bars []models.EODBar
	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		bars = make([]models.EODBar, 0, len(result.Timestamp))
		for i, ts := range result.Timestamp {
			cl := at(quote.Close, i)
			if cl == 0 {
				continue // null bars on holidays
			}
			bars = append(bars, models.EODBar{
				Date:     time.Unix(ts, 0).UTC(),
				Open:     at(quote.Open, i),
				High:     at(quote.High, i),
				Low:      at(quote.Low, i),
				Close:    cl,
				AdjClose: cl,
				Volume:   int64(at(quote.Volume, i)),
			})
		}
		sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	}

	return result, bars, nil
}

func (c *Client) lastClose(ctx context.Context, symbol string) (float64, error) {
	_, bars, err := c.fetchChart(ctx, symbol, "5d")
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("yahoo: no closes for %s", symbol)
	}
	return signals.LastClose(bars), nil
}

// rangeFor maps a lookback to the smallest chart range covering it
func rangeFor(lookback time.Duration) string {
	days := int(lookback.Hours() / 24)
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// GetIndices returns the latest daily move of the S&P 500, NASDAQ and Dow
func (c *Client) GetIndices(ctx context.Context) ([]models.IndexPerformance, error) {
	tracked := []struct {
		key, name, symbol string
	}{
		{"sp500", "S&P 500", c.tickers.SP500},
		{"nasdaq", "NASDAQ Composite", c.tickers.Nasdaq},
		{"dow", "Dow Jones Industrial Average", c.tickers.Dow},
	}

	var result []models.IndexPerformance
	var lastErr error
	for _, idx := range tracked {
		_, bars, err := c.fetchChart(ctx, idx.symbol, "5d")
		if err != nil {
			lastErr = err
			c.logger.Debug().Str("symbol", idx.symbol).Err(err).Msg("Index fetch failed")
			continue
		}
		if len(bars) < 2 {
			lastErr = fmt.Errorf("yahoo: not enough bars for %s", idx.symbol)
			continue
		}
		current := bars[len(bars)-1].Close
		change := signals.PercentChange(bars[len(bars)-2].Close, current)
		trend := "down"
		if change > 0 {
			trend = "up"
		}
		result = append(result, models.IndexPerformance{
			Symbol:    idx.key,
			Name:      idx.name,
			Value:     current,
			ChangePct: change,
			Trend:     trend,
		})
	}

	if len(result) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no index data")
		}
		return nil, fmt.Errorf("failed to fetch indices: %w", lastErr)
	}
	return result, nil
}

// GetYields returns treasury yields and macro proxies
func (c *Client) GetYields(ctx context.Context) (*models.Yields, error) {
	y := &models.Yields{}

	var err10, err3 error
	y.Treasury10Y, err10 = c.lastClose(ctx, c.tickers.Treasury10)
	y.Treasury3M, err3 = c.lastClose(ctx, c.tickers.Treasury3M)
	if err10 != nil && err3 != nil {
		return nil, fmt.Errorf("failed to fetch treasury yields: %w", err10)
	}

	for _, p := range []struct {
		symbol string
		dst    *float64
	}{
		{c.tickers.Gold, &y.GoldPrice},
		{c.tickers.Oil, &y.OilPrice},
		{c.tickers.USD, &y.USDIndex},
	} {
		v, err := c.lastClose(ctx, p.symbol)
		if err != nil {
			c.logger.Debug().Str("symbol", p.symbol).Err(err).Msg("Macro proxy fetch failed")
			continue
		}
		*p.dst = v
	}
	return y, nil
}

// GetVolatility returns the latest VIX close
func (c *Client) GetVolatility(ctx context.Context) (float64, error) {
	v, err := c.lastClose(ctx, c.tickers.VIX)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch volatility: %w", err)
	}
	return v, nil
}

// GetInflationProxy returns the 30-day change of the TIP fund
func (c *Client) GetInflationProxy(ctx context.Context) (*models.InflationProxy, error) {
	_, bars, err := c.fetchChart(ctx, c.tickers.TIP, "3mo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inflation proxy: %w", err)
	}
	if len(bars) < 2 {
		return nil, fmt.Errorf("yahoo: not enough bars for %s", c.tickers.TIP)
	}

	cutoff := c.now().AddDate(0, 0, -30)
	base := bars[0]
	for _, b := range bars {
		if !b.Date.Before(cutoff) {
			base = b
			break
		}
	}
	current := signals.LastClose(bars)
	return &models.InflationProxy{
		Symbol:    c.tickers.TIP,
		Current:   current,
		Change30D: signals.PercentChange(base.Close, current),
	}, nil
}

// GetPriceHistory returns daily bars, oldest first, covering lookback
func (c *Client) GetPriceHistory(ctx context.Context, symbol string, lookback time.Duration) ([]models.EODBar, error) {
	_, bars, err := c.fetchChart(ctx, symbol, rangeFor(lookback))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}
	return bars, nil
}

// GetFundamentals returns the partial fundamentals carried in the chart metadata.
// Ratios and yields are left zero, which the ranker treats as missing.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	meta, _, err := c.fetchChart(ctx, symbol, "5d")
	if err != nil {
		return nil, err
	}

	name := meta.Meta.LongName
	if name == "" {
		name = meta.Meta.ShortName
	}
	if name == "" {
		name = symbol
	}

	return &models.Fundamentals{
		Symbol:  symbol,
		Name:    name,
		High52W: meta.Meta.FiftyTwoWeekHigh,
		Low52W:  meta.Meta.FiftyTwoWeekLow,
		IsETF:   meta.Meta.InstrumentType == "ETF",
	}, nil
}

// GetTechnical is not offered by the chart API
func (c *Client) GetTechnical(ctx context.Context, symbol string) (*models.Technical, error) {
	return nil, interfaces.ErrNotSupported
}

// Compile-time check
var _ interfaces.MarketDataClient = (*Client)(nil)
