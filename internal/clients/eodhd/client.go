// Package eodhd provides a market data client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/signals"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		num, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// DefaultTickers are the EODHD symbols used for each market slice
var DefaultTickers = common.MarketTickers{
	SP500:      "GSPC.INDX",
	Nasdaq:     "IXIC.INDX",
	Dow:        "DJI.INDX",
	VIX:        "VIX.INDX",
	Treasury10: "US10Y.GBOND",
	Treasury3M: "US3M.GBOND",
	Gold:       "XAUUSD.FOREX",
	Oil:        "CL.COMM",
	USD:        "DXY.INDX",
	TIP:        "TIP.US",
}

var indexNames = map[string]string{
	"sp500":  "S&P 500",
	"nasdaq": "NASDAQ Composite",
	"dow":    "Dow Jones Industrial Average",
}

// Client implements interfaces.MarketDataClient against EODHD
type Client struct {
	baseURL    string
	apiKey     string
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

// WithTickers overrides the default slice tickers. Empty fields keep their defaults.
func WithTickers(t common.MarketTickers) ClientOption {
	return func(c *Client) {
		c.tickers = mergeTickers(c.tickers, t)
	}
}

// WithClock sets the time source used for date ranges
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		tickers: DefaultTickers,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func mergeTickers(base, override common.MarketTickers) common.MarketTickers {
	pick := func(b, o string) string {
		if o != "" {
			return o
		}
		return b
	}
	return common.MarketTickers{
		SP500:      pick(base.SP500, override.SP500),
		Nasdaq:     pick(base.Nasdaq, override.Nasdaq),
		Dow:        pick(base.Dow, override.Dow),
		VIX:        pick(base.VIX, override.VIX),
		Treasury10: pick(base.Treasury10, override.Treasury10),
		Treasury3M: pick(base.Treasury3M, override.Treasury3M),
		Gold:       pick(base.Gold, override.Gold),
		Oil:        pick(base.Oil, override.Oil),
		USD:        pick(base.USD, override.USD),
		TIP:        pick(base.TIP, override.TIP),
	}
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// getEOD returns daily bars in ascending date order
func (c *Client) getEOD(ctx context.Context, ticker string, from, to time.Time) ([]models.EODBar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var bars []eodBarResponse
	if err := c.get(ctx, "/eod/"+url.PathEscape(ticker), params, &bars); err != nil {
		return nil, err
	}

	result := make([]models.EODBar, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil || bar.Close == 0 {
			continue
		}
		result = append(result, models.EODBar{
			Date:     date,
			Open:     float64(bar.Open),
			High:     float64(bar.High),
			Low:      float64(bar.Low),
			Close:    float64(bar.Close),
			AdjClose: float64(bar.AdjustedClose),
			Volume:   int64(bar.Volume),
		})
	}
	return result, nil
}

// lastClose returns the most recent close within the past two weeks
func (c *Client) lastClose(ctx context.Context, ticker string) (float64, error) {
	now := c.now()
	bars, err := c.getEOD(ctx, ticker, now.AddDate(0, 0, -14), now)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no recent bars for %s", ticker)
	}
	return signals.LastClose(bars), nil
}

// GetIndices returns the latest daily move of the S&P 500, NASDAQ and Dow.
// Indices that cannot be fetched are skipped; an error is returned only when none can.
func (c *Client) GetIndices(ctx context.Context) ([]models.IndexPerformance, error) {
	now := c.now()
	tracked := []struct {
		key    string
		ticker string
	}{
		{"sp500", c.tickers.SP500},
		{"nasdaq", c.tickers.Nasdaq},
		{"dow", c.tickers.Dow},
	}

	var result []models.IndexPerformance
	var lastErr error
	for _, idx := range tracked {
		bars, err := c.getEOD(ctx, idx.ticker, now.AddDate(0, 0, -10), now)
		if err != nil {
			lastErr = err
			c.logger.Debug().Str("ticker", idx.ticker).Err(err).Msg("Index fetch failed")
			continue
		}
		if len(bars) < 2 {
			lastErr = fmt.Errorf("not enough bars for %s", idx.ticker)
			continue
		}
		result = append(result, indexPerformance(idx.key, indexNames[idx.key], bars))
	}

	if len(result) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no index data")
		}
		return nil, fmt.Errorf("failed to fetch indices: %w", lastErr)
	}
	return result, nil
}

func indexPerformance(symbol, name string, bars []models.EODBar) models.IndexPerformance {
	current := bars[len(bars)-1].Close
	previous := bars[len(bars)-2].Close
	change := signals.PercentChange(previous, current)
	trend := "down"
	if change > 0 {
		trend = "up"
	}
	return models.IndexPerformance{
		Symbol:    symbol,
		Name:      name,
		Value:     current,
		ChangePct: change,
		Trend:     trend,
	}
}

// GetYields returns the 10-year and 3-month treasury yields with gold, oil and
// dollar proxies. Proxies are best effort; an error is returned only when
// neither yield is available.
func (c *Client) GetYields(ctx context.Context) (*models.Yields, error) {
	y := &models.Yields{}

	var err10, err3 error
	y.Treasury10Y, err10 = c.lastClose(ctx, c.tickers.Treasury10)
	y.Treasury3M, err3 = c.lastClose(ctx, c.tickers.Treasury3M)
	if err10 != nil && err3 != nil {
		return nil, fmt.Errorf("failed to fetch treasury yields: %w", err10)
	}

	for _, p := range []struct {
		ticker string
		dst    *float64
	}{
		{c.tickers.Gold, &y.GoldPrice},
		{c.tickers.Oil, &y.OilPrice},
		{c.tickers.USD, &y.USDIndex},
	} {
		v, err := c.lastClose(ctx, p.ticker)
		if err != nil {
			c.logger.Debug().Str("ticker", p.ticker).Err(err).Msg("Macro proxy fetch failed")
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
	now := c.now()
	bars, err := c.getEOD(ctx, c.tickers.TIP, now.AddDate(0, 0, -45), now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inflation proxy: %w", err)
	}
	return inflationProxy(c.tickers.TIP, bars, now)
}

// inflationProxy compares the latest close with the first close on or after 30 days ago
func inflationProxy(symbol string, bars []models.EODBar, now time.Time) (*models.InflationProxy, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("not enough bars for %s", symbol)
	}
	cutoff := now.AddDate(0, 0, -30)
	base := bars[0]
	for _, b := range bars {
		if !b.Date.Before(cutoff) {
			base = b
			break
		}
	}
	current := signals.LastClose(bars)
	return &models.InflationProxy{
		Symbol:    symbol,
		Current:   current,
		Change30D: signals.PercentChange(base.Close, current),
	}, nil
}

// GetPriceHistory returns daily bars, oldest first, covering lookback
func (c *Client) GetPriceHistory(ctx context.Context, symbol string, lookback time.Duration) ([]models.EODBar, error) {
	now := c.now()
	bars, err := c.getEOD(ctx, stockTicker(symbol), now.Add(-lookback), now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}
	return bars, nil
}

// stockTicker appends the US exchange code to bare symbols
func stockTicker(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

// fundamentalsResponse is the subset of the fundamentals payload the ranker uses
type fundamentalsResponse struct {
	General struct {
		Code     string `json:"Code"`
		Name     string `json:"Name"`
		Type     string `json:"Type"`
		Sector   string `json:"Sector"`
		Industry string `json:"Industry"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization flexFloat64 `json:"MarketCapitalization"`
		PERatio              flexFloat64 `json:"PERatio"`
		EarningsShare        flexFloat64 `json:"EarningsShare"`
		DividendYield        flexFloat64 `json:"DividendYield"`
	} `json:"Highlights"`
	Technicals struct {
		Beta    flexFloat64 `json:"Beta"`
		High52W flexFloat64 `json:"52WeekHigh"`
		Low52W  flexFloat64 `json:"52WeekLow"`
	} `json:"Technicals"`
}

// GetFundamentals retrieves company fundamentals. Dividend yield is returned as a percent.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	var resp fundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(stockTicker(symbol)), nil, &resp); err != nil {
		return nil, err
	}

	name := resp.General.Name
	if name == "" {
		name = symbol
	}

	return &models.Fundamentals{
		Symbol:        symbol,
		Name:          name,
		Sector:        resp.General.Sector,
		Industry:      resp.General.Industry,
		PERatio:       float64(resp.Highlights.PERatio),
		DividendYield: float64(resp.Highlights.DividendYield) * 100,
		MarketCap:     float64(resp.Highlights.MarketCapitalization),
		EPS:           float64(resp.Highlights.EarningsShare),
		Beta:          float64(resp.Technicals.Beta),
		High52W:       float64(resp.Technicals.High52W),
		Low52W:        float64(resp.Technicals.Low52W),
		IsETF:         resp.General.Type == "ETF" || strings.Contains(strings.ToUpper(resp.General.Name), " ETF"),
	}, nil
}

// technicalResponse is one row of the technical indicator endpoint
type technicalResponse struct {
	Date string      `json:"date"`
	RSI  flexFloat64 `json:"rsi"`
}

// GetTechnical retrieves the latest 14-day RSI
func (c *Client) GetTechnical(ctx context.Context, symbol string) (*models.Technical, error) {
	params := url.Values{}
	params.Set("function", "rsi")
	params.Set("period", strconv.Itoa(signals.DefaultRSIPeriod))
	params.Set("order", "d")
	params.Set("limit", "1")

	var rows []technicalResponse
	if err := c.get(ctx, "/technical/"+url.PathEscape(stockTicker(symbol)), params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no technical data for %s", symbol)
	}

	date, _ := time.Parse("2006-01-02", rows[0].Date)
	return &models.Technical{
		RSI:    float64(rows[0].RSI),
		Date:   date,
		Source: "provider",
	}, nil
}

// Compile-time check
var _ interfaces.MarketDataClient = (*Client)(nil)
