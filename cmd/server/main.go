package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockdash/internal/api"
	"stockdash/internal/config"
	"stockdash/internal/httpx"
	"stockdash/internal/provider"
	"stockdash/internal/provider/ratelimit"
	"stockdash/internal/provider/yahoo"
	"stockdash/internal/stockdata"
	"stockdash/internal/symbol"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	port := cfg.Server.Port
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	httpClient := httpx.New(timeout)

	var p provider.Provider = yahoo.New(yahoo.Config{
		ChartEndpoint:        cfg.Yahoo.ChartEndpoint,
		QuoteSummaryEndpoint: cfg.Yahoo.QuoteSummaryEndpoint,
	}, httpClient)
	// Prefer token bucket with burst if RPM is set, otherwise use min-interval
	if cfg.Yahoo.MaxRequestsPerMinute > 0 {
		rate := float64(cfg.Yahoo.MaxRequestsPerMinute) / 60.0
		burst := cfg.Yahoo.Burst
		if burst <= 0 {
			burst = 1
		}
		p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.Yahoo.MinRequestIntervalSec > 0 {
		p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.Yahoo.MinRequestIntervalSec) * time.Second}
	}

	svc := stockdata.NewService(p,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Cache.MaxItems,
		timeout)
	norm := symbol.NewNormalizer(p, cfg.Symbols.SecondarySuffix, cfg.Symbols.PrimarySymbols)

	router := api.SetupRoutes(api.NewHandler(svc, norm), cfg.Server.StaticDir)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.Middleware(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
