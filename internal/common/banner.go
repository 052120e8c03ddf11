package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the startup banner for long-running commands and logs
// the same details as a structured line.
func PrintBanner(w io.Writer, config *Config, logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	storage := config.Storage.Driver
	if config.Storage.Driver == "surrealdb" {
		storage += " " + config.Storage.Address
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  PERSONAL FINANCE ADVISOR%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s  Budgets, risk, market-aware recommendations%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	v := CurrentVersion()
	kvLines := [][2]string{
		{"Version", v.Version},
		{"Build", v.Build},
		{"Commit", v.Commit},
		{"Environment", config.Environment},
		{"Storage", storage},
		{"Market data", config.Market.Provider},
		{"Text model", config.LLM.Provider + " " + config.LLM.Model},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", v.Version).
		Str("environment", config.Environment).
		Str("storage", config.Storage.Driver).
		Str("market_provider", config.Market.Provider).
		Str("llm_provider", config.LLM.Provider).
		Str("llm_model", config.LLM.Model).
		Msg("Advisor started")
}

// PrintShutdownBanner writes the shutdown banner.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset
	fmt.Fprintf(w, "\n%s\n%s  ADVISOR SHUTTING DOWN%s\n%s\n\n", hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)

	logger.Info().Msg("Advisor shutting down")
}
