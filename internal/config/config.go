package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the sector and index ETF universe scanned when none is configured.
var DefaultSymbols = []string{
	"XLE", "XLK", "XOP", "XLY", "XLV", "XLU", "XLRE", "XLP", "XLI",
	"XLF", "XLC", "XLB", "SMH", "IWM", "DOW", "QQQ", "ARKK",
}

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Scan struct {
		Base             string   `yaml:"base" envconfig:"CRS_BASE"`
		Symbols          []string `yaml:"symbols" envconfig:"CRS_SYMBOLS"`
		SMALength        int      `yaml:"sma_length" envconfig:"CRS_SMA_LENGTH"`
		UptrendSMALength int      `yaml:"uptrend_sma_length" envconfig:"CRS_UPTREND_SMA_LENGTH"`
		CRSTrendLookback int      `yaml:"crs_trend_lookback" envconfig:"CRS_TREND_LOOKBACK"`
		LookbackDays     int      `yaml:"lookback_days" envconfig:"CRS_LOOKBACK_DAYS"`
		StartDate        string   `yaml:"start_date" envconfig:"CRS_START_DATE"`
		Workers          int      `yaml:"workers" envconfig:"CRS_WORKERS"`
	} `yaml:"scan"`
	DataSource struct {
		Provider    string        `yaml:"provider" envconfig:"DATA_PROVIDER"`
		BaseURL     string        `yaml:"base_url" envconfig:"VSTRADER_BASE_URL"`
		APIKey      string        `yaml:"api_key" envconfig:"DATA_API_KEY"`
		APISecret   string        `yaml:"api_secret" envconfig:"DATA_API_SECRET"`
		MaxRetries  int           `yaml:"max_retries" envconfig:"DATA_MAX_RETRIES"`
		Concurrency int           `yaml:"concurrency" envconfig:"DATA_CONCURRENCY"`
		Timeout     time.Duration `yaml:"timeout" envconfig:"DATA_TIMEOUT"`
	} `yaml:"data_source"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron" envconfig:"CRON_SCAN"`
		Exchange string `yaml:"exchange" envconfig:"MARKET_EXCHANGE"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	Server struct {
		Addr string `yaml:"addr" envconfig:"SERVER_ADDR"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then a .env file if present, then applies
// environment variable overrides and defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	// Unset variables leave YAML values untouched.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scan.Base == "" {
		c.Scan.Base = "SPY"
	}
	if len(c.Scan.Symbols) == 0 {
		c.Scan.Symbols = append([]string(nil), DefaultSymbols...)
	}
	for i, s := range c.Scan.Symbols {
		c.Scan.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	c.Scan.Base = strings.ToUpper(strings.TrimSpace(c.Scan.Base))
	if c.Scan.SMALength == 0 {
		c.Scan.SMALength = 20
	}
	if c.Scan.UptrendSMALength == 0 {
		c.Scan.UptrendSMALength = 100
	}
	if c.Scan.LookbackDays == 0 {
		c.Scan.LookbackDays = 365
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 4
	}
	if c.DataSource.MaxRetries == 0 {
		c.DataSource.MaxRetries = 3
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 16 * * 1-5"
	}
	if c.Schedule.Exchange == "" {
		c.Schedule.Exchange = "xnys"
	}
}

// Validate checks the scan settings. Telegram and server settings are checked by
// ValidateDaemon since one-shot runs do not need them.
func (c *Config) Validate() error {
	if c.Scan.Base == "" {
		return fmt.Errorf("scan.base is required")
	}
	if len(c.Scan.Symbols) == 0 {
		return fmt.Errorf("scan.symbols must not be empty")
	}
	for _, s := range c.Scan.Symbols {
		if s == "" {
			return fmt.Errorf("scan.symbols contains an empty symbol")
		}
	}
	if c.Scan.SMALength < 1 {
		return fmt.Errorf("scan.sma_length must be positive")
	}
	if c.Scan.UptrendSMALength < 1 {
		return fmt.Errorf("scan.uptrend_sma_length must be positive")
	}
	if c.Scan.CRSTrendLookback < 0 || c.Scan.CRSTrendLookback == 1 {
		return fmt.Errorf("scan.crs_trend_lookback must be 0 or at least 2")
	}
	if c.Scan.LookbackDays < 1 {
		return fmt.Errorf("scan.lookback_days must be positive")
	}
	if c.Scan.StartDate != "" {
		if _, err := time.Parse(dateLayout, c.Scan.StartDate); err != nil {
			return fmt.Errorf("scan.start_date must be YYYY-MM-DD: %w", err)
		}
	}
	if c.DataSource.MaxRetries < 1 {
		return fmt.Errorf("data_source.max_retries must be positive")
	}
	if c.DataSource.Concurrency < 1 {
		return fmt.Errorf("data_source.concurrency must be positive")
	}
	switch c.DataSource.Provider {
	case "", "yahoo", "vstrader", "alpaca", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Provider == "vstrader" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for vstrader")
	}
	if c.DataSource.Provider == "alpaca" && (c.DataSource.APIKey == "" || c.DataSource.APISecret == "") {
		return fmt.Errorf("data_source.api_key and api_secret are required for alpaca")
	}
	return nil
}

// ValidateDaemon checks the additional settings required by daemon mode.
func (c *Config) ValidateDaemon() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// ScanRange returns the date range of a scan run at now. The start is
// scan.start_date when set, otherwise lookback_days before now.
func (c *Config) ScanRange(now time.Time) (start, end time.Time, err error) {
	end = now.UTC()
	if c.Scan.StartDate != "" {
		start, err = time.Parse(dateLayout, c.Scan.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse start_date: %w", err)
		}
	} else {
		start = end.AddDate(0, 0, -c.Scan.LookbackDays)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is not before %s", start.Format(dateLayout), end.Format(dateLayout))
	}
	return start, end, nil
}
