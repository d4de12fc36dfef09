package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
	StaticDir         string `json:"static_dir"`
}

type Yahoo struct {
	ChartEndpoint         string `json:"chart_endpoint"`
	QuoteSummaryEndpoint  string `json:"quote_summary_endpoint"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
}

type Cache struct {
	TTLSeconds int `json:"ttl_sec"`
	MaxItems   int `json:"max_items"`
}

type Symbols struct {
	// SecondarySuffix is appended during the speculative exchange lookup
	// for bare alphabetic tickers (e.g. ".NS").
	SecondarySuffix string `json:"secondary_suffix"`
	// PrimarySymbols are assumed to trade on the default exchange and are
	// never retried against the secondary suffix.
	PrimarySymbols []string `json:"primary_symbols"`
}

type Config struct {
	Server  Server  `json:"server"`
	Yahoo   Yahoo   `json:"yahoo"`
	Cache   Cache   `json:"cache"`
	Symbols Symbols `json:"symbols"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10, StaticDir: "web"},
		Yahoo: Yahoo{
			ChartEndpoint:        "https://query1.finance.yahoo.com/v8/finance/chart",
			QuoteSummaryEndpoint: "https://query1.finance.yahoo.com/v10/finance/quoteSummary",
		},
		Cache: Cache{
			TTLSeconds: 3600,
			MaxItems:   1000,
		},
		Symbols: Symbols{
			SecondarySuffix: ".NS",
			PrimarySymbols:  []string{"AAPL", "MSFT", "AMZN", "GOOGL", "META", "TSLA", "NFLX"},
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("YAHOO_CHART_ENDPOINT"); v != "" {
		cfg.Yahoo.ChartEndpoint = v
	}
	if v := os.Getenv("YAHOO_QUOTE_ENDPOINT"); v != "" {
		cfg.Yahoo.QuoteSummaryEndpoint = v
	}
	if v := os.Getenv("YAHOO_MAX_RPM"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Yahoo.MaxRequestsPerMinute = x
		}
	}
	if v := os.Getenv("YAHOO_MIN_INTERVAL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Yahoo.MinRequestIntervalSec = x
		}
	}
	if v := os.Getenv("YAHOO_BURST"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Yahoo.Burst = x
		}
	}
	if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Cache.TTLSeconds = x
		}
	}
	if v := os.Getenv("CACHE_MAX_ITEMS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Cache.MaxItems = x
		}
	}
	if v := os.Getenv("SYMBOL_SUFFIX"); v != "" {
		cfg.Symbols.SecondarySuffix = v
	}
	if v := os.Getenv("PRIMARY_SYMBOLS"); v != "" {
		cfg.Symbols.PrimarySymbols = splitCSV(v)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
