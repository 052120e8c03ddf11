// Package signals provides technical indicator calculations.
// All functions expect bars ordered oldest first.
package signals

import (
	"errors"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// DefaultRSIPeriod is the standard Wilder RSI lookback
const DefaultRSIPeriod = 14

// TradingDaysPerYear is the bar count above which a history spans a full year
const TradingDaysPerYear = 250

// RSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 bars and returns 50 when data is insufficient.
func RSI(bars []models.EODBar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 50, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// RSI zones
const (
	RSIOversold   = "oversold"
	RSIOverbought = "overbought"
	RSINeutral    = "neutral"
)

// ClassifyRSI returns the zone: oversold below 30, overbought above 70
func ClassifyRSI(rsi float64) string {
	switch {
	case rsi < 30:
		return RSIOversold
	case rsi > 70:
		return RSIOverbought
	default:
		return RSINeutral
	}
}

// PercentChange returns (to-from)/from*100, or 0 when from is not positive
func PercentChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from * 100
}

// LastClose returns the close of the newest bar, or 0
func LastClose(bars []models.EODBar) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}

// Change52Week returns the percent change from the first to the last bar when
// the history spans more than a trading year, else 0.
func Change52Week(bars []models.EODBar) float64 {
	if len(bars) <= TradingDaysPerYear {
		return 0
	}
	return PercentChange(bars[0].Close, LastClose(bars))
}

// High52Week returns the highest high over the last trading year of bars
func High52Week(bars []models.EODBar) float64 {
	high := 0.0
	for _, b := range lastN(bars, TradingDaysPerYear+2) {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

// Low52Week returns the lowest positive low over the last trading year of bars
func Low52Week(bars []models.EODBar) float64 {
	low := 0.0
	for _, b := range lastN(bars, TradingDaysPerYear+2) {
		if b.Low > 0 && (low == 0 || b.Low < low) {
			low = b.Low
		}
	}
	return low
}

func lastN(bars []models.EODBar, n int) []models.EODBar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
