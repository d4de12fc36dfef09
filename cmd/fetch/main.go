package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stockdash/internal/config"
	"stockdash/internal/export"
	"stockdash/internal/httpx"
	"stockdash/internal/provider/yahoo"
	"stockdash/internal/stockdata"
	"stockdash/internal/symbol"
)

func main() {
	var rawSymbol string
	var startStr, endStr string
	var format string
	var timeout int
	var configPath string

	flag.StringVar(&rawSymbol, "symbol", getenv("SYMBOL", "AAPL"), "ticker symbol")
	flag.StringVar(&startStr, "start", "", "start date YYYY-MM-DD (default: end minus one year)")
	flag.StringVar(&endStr, "end", "", "end date YYYY-MM-DD (default: today)")
	flag.StringVar(&format, "format", "csv", "output format: csv or json")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout != 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			log.Fatalf("end date: %v", err)
		}
	}
	start := end.AddDate(-1, 0, 0)
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			log.Fatalf("start date: %v", err)
		}
	}
	if start.After(end) {
		log.Fatal("start date must not be after end date")
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	p := yahoo.New(yahoo.Config{
		ChartEndpoint:        cfg.Yahoo.ChartEndpoint,
		QuoteSummaryEndpoint: cfg.Yahoo.QuoteSummaryEndpoint,
	}, httpClient)
	svc := stockdata.NewService(p,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Cache.MaxItems,
		time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	norm := symbol.NewNormalizer(p, cfg.Symbols.SecondarySuffix, cfg.Symbols.PrimarySymbols)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*2*time.Second)
	defer cancel()

	sym, err := norm.Normalize(ctx, rawSymbol)
	if err != nil {
		log.Fatalf("symbol: %v", err)
	}

	res, err := svc.Fetch(ctx, sym, start, end)
	if err != nil {
		log.Fatalf("fetch %s: %v", sym, err)
	}

	switch format {
	case "json":
		out := struct {
			*stockdata.Result
			Quote stockdata.Quote `json:"quote"`
			Stats stockdata.Stats `json:"stats"`
		}{res, res.Quote(), res.Stats()}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
	case "csv":
		if err := export.WriteHistory(os.Stdout, res.Bars); err != nil {
			log.Fatalf("csv: %v", err)
		}
	default:
		log.Fatalf("unknown format %q (want csv or json)", format)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 {
			return x
		}
	}
	return def
}
