package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the stockdash binaries.
type Config struct {
	API       API       `yaml:"api"`
	Logging   Logging   `yaml:"logging"`
	Dashboard Dashboard `yaml:"dashboard"`
	Server    Server    `yaml:"server"`
	Alpaca    Alpaca    `yaml:"alpaca"`
}

// API points at the prediction backend.
type API struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Dashboard holds what the views show by default.
type Dashboard struct {
	DefaultTicker string   `yaml:"default_ticker"`
	Popular       []string `yaml:"popular"`
	PriceDays     int      `yaml:"price_days"`
	NewsLimit     int      `yaml:"news_limit"`
}

// Server holds the browser bridge listener and its refresh schedule.
type Server struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// Alpaca holds optional market-data credentials. When set, prices and/or
// news can come from Alpaca instead of the prediction backend.
type Alpaca struct {
	APIKey           string `yaml:"api_key"`
	APISecret        string `yaml:"api_secret"`
	DataURL          string `yaml:"data_url"`
	PricesFromAlpaca bool   `yaml:"prices_from_alpaca"`
	NewsFromAlpaca   bool   `yaml:"news_from_alpaca"`
}

// Enabled reports whether credentials are present.
func (a Alpaca) Enabled() bool {
	return a.APIKey != "" && a.APISecret != ""
}

// Addr returns the bridge listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultPopular are the quick-pick tickers shown when none are configured.
var DefaultPopular = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN", "NVDA", "META"}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at path, applies environment
// variable overrides and defaults, and validates the result. A missing file
// is not an error: defaults and the environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCKDASH_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("STOCKDASH_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}

	if v := os.Getenv("STOCKDASH_TICKER"); v != "" {
		cfg.Dashboard.DefaultTicker = v
	}

	if v := os.Getenv("STOCKDASH_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("STOCKDASH_REFRESH"); v != "" {
		cfg.Server.RefreshSchedule = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:5000"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.RequestsPerSec == 0 {
		cfg.API.RequestsPerSec = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Dashboard.DefaultTicker == "" {
		cfg.Dashboard.DefaultTicker = "AAPL"
	}
	if len(cfg.Dashboard.Popular) == 0 {
		cfg.Dashboard.Popular = append([]string(nil), DefaultPopular...)
	}
	if cfg.Dashboard.PriceDays == 0 {
		cfg.Dashboard.PriceDays = 30
	}
	if cfg.Dashboard.NewsLimit == 0 {
		cfg.Dashboard.NewsLimit = 20
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
}

// Validate rejects configurations the binaries cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url: missing host")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout: must not be negative")
	}
	if c.API.RequestsPerSec < 0 {
		return fmt.Errorf("api.requests_per_sec: must not be negative")
	}
	if (c.Alpaca.PricesFromAlpaca || c.Alpaca.NewsFromAlpaca) && !c.Alpaca.Enabled() {
		return fmt.Errorf("alpaca: prices_from_alpaca/news_from_alpaca need api_key and api_secret")
	}
	return nil
}
