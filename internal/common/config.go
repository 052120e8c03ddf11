package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the advisor engine
type Config struct {
	Environment string          `toml:"environment"`
	Snapshot    SnapshotConfig  `toml:"snapshot"`
	Market      MarketConfig    `toml:"market"`
	Stocks      StocksConfig    `toml:"stocks"`
	Risk        RiskConfig      `toml:"risk"`
	LLM         LLMConfig       `toml:"llm"`
	Storage     StorageConfig   `toml:"storage"`
	Recorder    RecorderConfig  `toml:"recorder"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
}

// SnapshotConfig controls which transaction window a snapshot is built from.
// The current calendar month is used unless it has fewer than MinTransactions
// transactions, or RequireIncome is set and the month has no positive amount;
// then the trailing FallbackDays are used instead.
type SnapshotConfig struct {
	MinTransactions int  `toml:"min_transactions"`
	RequireIncome   bool `toml:"require_income"`
	FallbackDays    int  `toml:"fallback_days"`
}

// MarketConfig holds market aggregation settings and the tickers used per slice
type MarketConfig struct {
	Provider string        `toml:"provider"` // "eodhd" or "yahoo"
	Timeout  string        `toml:"timeout"`  // per sub-fetch
	Tickers  MarketTickers `toml:"tickers"`
}

// MarketTickers maps each market slice to a provider-specific symbol.
// Empty values fall back to the provider defaults.
type MarketTickers struct {
	SP500      string `toml:"sp500"`
	Nasdaq     string `toml:"nasdaq"`
	Dow        string `toml:"dow"`
	VIX        string `toml:"vix"`
	Treasury10 string `toml:"treasury_10y"`
	Treasury3M string `toml:"treasury_3m"`
	Gold       string `toml:"gold"`
	Oil        string `toml:"oil"`
	USD        string `toml:"usd"`
	TIP        string `toml:"tip"`
}

// GetTimeout parses and returns the per sub-fetch timeout
func (c *MarketConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// StocksConfig holds stock ranker settings
type StocksConfig struct {
	Concurrency int    `toml:"concurrency"`
	History     string `toml:"history"` // price history lookback, e.g. "8760h"
}

// GetHistory parses and returns the price history lookback
func (c *StocksConfig) GetHistory() time.Duration {
	d, err := time.ParseDuration(c.History)
	if err != nil {
		return 365 * 24 * time.Hour
	}
	return d
}

// RiskConfig holds the location of the pretrained risk model artifact.
// An empty path means the rule-based strategy is used on its own.
type RiskConfig struct {
	ModelPath string `toml:"model_path"`
}

// LLMConfig holds text-generation settings
type LLMConfig struct {
	Provider     string `toml:"provider"` // "gemini", "anthropic" or "none"
	Model        string `toml:"model"`
	APIKey       string `toml:"api_key"`
	MaxTokens    int64  `toml:"max_tokens"`
	Timeout      string `toml:"timeout"`
	LightTimeout string `toml:"light_timeout"`
}

// GetTimeout returns the generation timeout for the configured model.
// Lightweight models (name contains "3b") get the shorter budget.
func (c *LLMConfig) GetTimeout() time.Duration {
	if strings.Contains(strings.ToLower(c.Model), "3b") {
		d, err := time.ParseDuration(c.LightTimeout)
		if err != nil {
			return 20 * time.Second
		}
		return d
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// StorageConfig holds the snapshot store connection settings
type StorageConfig struct {
	Driver    string `toml:"driver"` // "surrealdb" or "postgres"
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DSN       string `toml:"dsn"` // postgres connection string
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the store read timeout
func (c *StorageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// RecorderConfig holds the pipeline execution log location. Empty disables recording.
type RecorderConfig struct {
	Path string `toml:"path"`
}

// SchedulerConfig holds the periodic pipeline sweep settings
type SchedulerConfig struct {
	PipelineCron string   `toml:"pipeline_cron"`
	Users        []string `toml:"users"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
	Yahoo YahooConfig `toml:"yahoo"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Snapshot: SnapshotConfig{
			MinTransactions: 5,
			RequireIncome:   true,
			FallbackDays:    30,
		},
		Market: MarketConfig{
			Provider: "eodhd",
			Timeout:  "5s",
		},
		Stocks: StocksConfig{
			Concurrency: 4,
			History:     "8760h",
		},
		LLM: LLMConfig{
			Provider:     "gemini",
			Model:        "gemini-2.0-flash",
			MaxTokens:    1024,
			Timeout:      "30s",
			LightTimeout: "20s",
		},
		Storage: StorageConfig{
			Driver:    "surrealdb",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "advisor",
			Database:  "advisor",
			Username:  "root",
			Password:  "root",
			Timeout:   "10s",
		},
		Recorder: RecorderConfig{
			Path: "data/executions.db",
		},
		Scheduler: SchedulerConfig{
			PipelineCron: "0 0 7 * * *",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 2,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ADVISOR_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("ADVISOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("ADVISOR_MARKET_PROVIDER"); v != "" {
		config.Market.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("ADVISOR_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("ADVISOR_LLM_MODEL"); v != "" {
		config.LLM.Model = v
	}

	if v := os.Getenv("ADVISOR_STORAGE_DRIVER"); v != "" {
		config.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("ADVISOR_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("ADVISOR_STORAGE_DSN"); v != "" {
		config.Storage.DSN = v
	}

	if v := os.Getenv("ADVISOR_RISK_MODEL"); v != "" {
		config.Risk.ModelPath = v
	}

	if v := os.Getenv("ADVISOR_SNAPSHOT_MIN_TRANSACTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Snapshot.MinTransactions = n
		}
	}

	if v := os.Getenv("ADVISOR_SCHEDULER_USERS"); v != "" {
		var users []string
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				users = append(users, u)
			}
		}
		config.Scheduler.Users = users
	}

	// Provider API keys use the names the providers document
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		config.Clients.EODHD.APIKey = v
	}

	switch config.LLM.Provider {
	case "gemini":
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				config.LLM.APIKey = v
				break
			}
		}
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			config.LLM.APIKey = v
		}
	}
}

// ValidateRequired returns the config keys that must be set for the selected
// providers but are empty.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Market.Provider == "eodhd" && c.Clients.EODHD.APIKey == "" {
		missing = append(missing, "clients.eodhd.api_key")
	}
	if (c.LLM.Provider == "gemini" || c.LLM.Provider == "anthropic") && c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key")
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		missing = append(missing, "storage.dsn")
	}
	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
