// Package stockdata fetches price history and fundamentals through a
// Provider and memoizes the combined result per (symbol, start, end) key.
package stockdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"stockdash/internal/metrics"
	"stockdash/internal/provider"
)

// ErrNoData marks a symbol/range combination the provider has no bars for.
// It is a result, not a failure: unknown tickers land here.
var ErrNoData = errors.New("no data for symbol in range")

// Result bundles everything one dashboard render needs. Results are shared
// between cache hits and must not be mutated by callers.
type Result struct {
	Symbol  string                `json:"symbol"`
	Bars    []provider.Bar        `json:"bars"`
	Info    *provider.CompanyInfo `json:"info"`
	Metrics metrics.Snapshot      `json:"metrics"`
}

// Service is the single gate to the upstream provider. Concurrent fetches of
// the same key are coalesced into one upstream call; distinct keys proceed
// independently.
type Service struct {
	p       provider.Provider
	cache   *Cache
	timeout time.Duration
	sf      singleflight.Group
}

// NewService wires a provider behind a TTL cache. timeout bounds each
// upstream call; 0 disables the bound.
func NewService(p provider.Provider, ttl time.Duration, maxItems int, timeout time.Duration) *Service {
	return &Service{
		p:       p,
		cache:   &Cache{TTL: ttl, MaxItems: maxItems},
		timeout: timeout,
	}
}

// Cache exposes the underlying cache, for tests.
func (s *Service) Cache() *Cache { return s.cache }

// Fetch returns bars, company info, and the raw metrics snapshot for a
// normalized symbol over [start, end].
//
// A live cache entry is returned as-is. On a miss, the provider is called
// once for history and once for info; an empty history yields ErrNoData,
// which is cached like a regular result so a bad ticker does not hammer the
// upstream for the rest of the TTL. Provider failures are returned wrapped
// and are not cached.
func (s *Service) Fetch(ctx context.Context, symbol string, start, end time.Time) (*Result, error) {
	key := Key{
		Symbol: symbol,
		Start:  start.Format("2006-01-02"),
		End:    end.Format("2006-01-02"),
	}
	if res, ok := s.cache.Get(key); ok {
		return unpack(res)
	}

	v, err, _ := s.sf.Do(key.flight(), func() (any, error) {
		// Losers of the singleflight race may arrive here after the
		// winner stored the entry.
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
		res, err := s.fetch(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return unpack(v.(*Result))
}

// unpack converts the cached nil-result convention into ErrNoData.
func unpack(res *Result) (*Result, error) {
	if res == nil {
		return nil, ErrNoData
	}
	return res, nil
}

// fetch performs the two provider calls. It returns (nil, nil) for the
// no-data case so the sentinel gets cached.
func (s *Service) fetch(ctx context.Context, symbol string, start, end time.Time) (*Result, error) {
	bars, err := s.history(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("retrieving data for %q: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, nil
	}

	info, err := s.info(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("retrieving data for %q: %w", symbol, err)
	}
	var f provider.Fundamentals
	if info != nil {
		f = info.Fundamentals
	}
	return &Result{
		Symbol:  symbol,
		Bars:    bars,
		Info:    info,
		Metrics: metrics.Build(f),
	}, nil
}

func (s *Service) history(ctx context.Context, symbol string, start, end time.Time) ([]provider.Bar, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.p.History(ctx, symbol, start, end)
}

func (s *Service) info(ctx context.Context, symbol string) (*provider.CompanyInfo, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.p.Info(ctx, symbol)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
