package ratelimit

import (
	"context"
	"sync"
	"time"

	"stockdash/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between upstream
// calls, shared across History and Info. Concurrent calls wait until the
// interval has elapsed since the last call, or return early if the context is
// canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) History(ctx context.Context, symbol string, start, end time.Time) ([]provider.Bar, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	bars, err := m.P.History(ctx, symbol, start, end)
	m.mark()
	return bars, err
}

func (m *MinInterval) Info(ctx context.Context, symbol string) (*provider.CompanyInfo, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	info, err := m.P.Info(ctx, symbol)
	m.mark()
	return info, err
}

func (m *MinInterval) wait(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MinInterval) mark() {
	if m.Interval <= 0 {
		return
	}
	m.mu.Lock()
	m.last = time.Now()
	m.mu.Unlock()
}
