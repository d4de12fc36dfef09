package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockdash/internal/api"
	"stockdash/internal/export"
	"stockdash/internal/metrics"
	"stockdash/internal/provider"
	"stockdash/internal/stockdata"
	"stockdash/internal/symbol"
)

// stubService records the last fetch and returns canned data.
type stubService struct {
	res *stockdata.Result
	err error

	symbol     string
	start, end time.Time
}

func (s *stubService) Fetch(_ context.Context, sym string, start, end time.Time) (*stockdata.Result, error) {
	s.symbol, s.start, s.end = sym, start, end
	return s.res, s.err
}

func newRouter(svc *stubService) http.Handler {
	norm := symbol.NewNormalizer(nil, ".NS", []string{"AAPL"})
	h := api.NewHandler(svc, norm)
	return api.Middleware(api.SetupRoutes(h, ""))
}

func fp(v float64) *float64 { return &v }

func stubResult(sym string) *stockdata.Result {
	return &stockdata.Result{
		Symbol: sym,
		Bars: []provider.Bar{
			{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
			{Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Open: 11, High: 14, Low: 10, Close: 13, Volume: 300},
		},
		Info:    &provider.CompanyInfo{Symbol: sym, ShortName: "Apple Inc.", LongName: "Apple Inc."},
		Metrics: metrics.Build(provider.Fundamentals{MarketCap: fp(2_500_000_000)}),
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestGetStock_OK(t *testing.T) {
	t.Parallel()

	svc := &stubService{res: stubResult("AAPL")}
	rr := get(t, newRouter(svc), "/api/v1/stocks/aapl?start=2025-06-01&end=2025-06-05")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Symbol         string          `json:"symbol"`
		CurrencySymbol string          `json:"currency_symbol"`
		Metrics        []metrics.Row   `json:"metrics"`
		History        []provider.Bar  `json:"history"`
		Quote          stockdata.Quote `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "AAPL", resp.Symbol)
	require.Equal(t, "$", resp.CurrencySymbol)
	require.Len(t, resp.Metrics, 11)
	require.Equal(t, "$2.50B", resp.Metrics[0].Value)
	require.Len(t, resp.History, 2)
	require.Equal(t, 13.0, resp.Quote.Price)

	// handler passes the normalized symbol and parsed range through
	require.Equal(t, "AAPL", svc.symbol)
	require.Equal(t, "2025-06-01", svc.start.Format("2006-01-02"))
	require.Equal(t, "2025-06-05", svc.end.Format("2006-01-02"))
}

func TestGetStock_RupeeSymbolForIndianExchanges(t *testing.T) {
	t.Parallel()

	svc := &stubService{res: stubResult("RELIANCE.NS")}
	rr := get(t, newRouter(svc), "/api/v1/stocks/RELIANCE.NS")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		CurrencySymbol string `json:"currency_symbol"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "₹", resp.CurrencySymbol)
}

func TestGetStock_DefaultRollingWindow(t *testing.T) {
	t.Parallel()

	svc := &stubService{res: stubResult("AAPL")}
	rr := get(t, newRouter(svc), "/api/v1/stocks/AAPL")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 365*24*time.Hour, svc.end.Sub(svc.start))
}

func TestGetStock_BadRequests(t *testing.T) {
	t.Parallel()

	svc := &stubService{res: stubResult("AAPL")}
	router := newRouter(svc)

	for _, target := range []string{
		"/api/v1/stocks/%20%20",
		"/api/v1/stocks/AAPL?start=junk",
		"/api/v1/stocks/AAPL?end=2025-13-45",
		"/api/v1/stocks/AAPL?start=2025-06-05&end=2025-06-01",
	} {
		rr := get(t, router, target)
		require.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestGetStock_NoData(t *testing.T) {
	t.Parallel()

	svc := &stubService{err: stockdata.ErrNoData}
	rr := get(t, newRouter(svc), "/api/v1/stocks/NOPE")
	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "No data found for ticker 'NOPE'. Please check the symbol and try again.", resp["error"])
}

func TestGetStock_ProviderFailure(t *testing.T) {
	t.Parallel()

	svc := &stubService{err: fmt.Errorf("retrieving data for %q: %w", "AAPL", errors.New("upstream down"))}
	rr := get(t, newRouter(svc), "/api/v1/stocks/AAPL")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp["error"], "Error retrieving data:")
	require.Contains(t, resp["error"], "upstream down")
}

func TestGetHistoryCSV(t *testing.T) {
	t.Parallel()

	svc := &stubService{res: stubResult("AAPL")}
	rr := get(t, newRouter(svc), "/api/v1/stocks/AAPL/history.csv?start=2025-06-01&end=2025-06-05")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="AAPL_historical_data_20250601_20250605.csv"`,
		rr.Header().Get("Content-Disposition"))

	bars, err := export.ReadHistory(rr.Body)
	require.NoError(t, err)
	require.Equal(t, svc.res.Bars, bars)
}

func TestGetMetricsCSV(t *testing.T) {
	t.Parallel()

	svc := &stubService{res: stubResult("AAPL")}
	rr := get(t, newRouter(svc), "/api/v1/stocks/AAPL/metrics.csv")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `attachment; filename="AAPL_financial_metrics.csv"`,
		rr.Header().Get("Content-Disposition"))
	require.Contains(t, rr.Body.String(), "Metric,Value\n")
	require.Contains(t, rr.Body.String(), "Market Cap,$2.50B\n")
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rr := get(t, newRouter(&stubService{}), "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}
