// Package interfaces defines the contracts between the advisor components
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// ErrNotSupported is returned by a client for data its provider does not offer
var ErrNotSupported = errors.New("not supported by provider")

// MarketDataClient provides market data. Each call is independent so a
// failing endpoint only degrades the slice that depends on it.
type MarketDataClient interface {
	// GetIndices returns the latest move of the tracked market indices
	GetIndices(ctx context.Context) ([]models.IndexPerformance, error)

	// GetYields returns treasury yields plus gold, oil and dollar proxies
	GetYields(ctx context.Context) (*models.Yields, error)

	// GetVolatility returns the latest volatility index close
	GetVolatility(ctx context.Context) (float64, error)

	// GetInflationProxy returns the 30-day move of the inflation proxy fund
	GetInflationProxy(ctx context.Context) (*models.InflationProxy, error)

	// GetPriceHistory returns daily bars, oldest first, covering lookback
	GetPriceHistory(ctx context.Context, symbol string, lookback time.Duration) ([]models.EODBar, error)

	// GetFundamentals returns company fundamentals
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)

	// GetTechnical returns the latest technical indicators
	GetTechnical(ctx context.Context, symbol string) (*models.Technical, error)
}

// TextGenerator produces free text from a prompt. The deadline on ctx bounds
// the call; implementations must return once ctx is done.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model name
	Model() string
}

// RiskModel is a pretrained scoring function over a fixed feature vector
type RiskModel interface {
	// Score returns a risk score in [0,1]
	Score(features []float64) (float64, error)

	// InputSize returns the feature vector length the model was trained on
	InputSize() int
}
