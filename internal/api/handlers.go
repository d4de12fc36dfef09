package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"stockdash/internal/export"
	"stockdash/internal/metrics"
	"stockdash/internal/provider"
	"stockdash/internal/stockdata"
	"stockdash/internal/symbol"
)

// defaultWindow is the rolling history window when no dates are given.
const defaultWindow = 365 * 24 * time.Hour

// StockService is the fetch gate consumed by the handlers.
type StockService interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (*stockdata.Result, error)
}

// SymbolNormalizer canonicalizes raw ticker input.
type SymbolNormalizer interface {
	Normalize(ctx context.Context, raw string) (string, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	stocks  StockService
	symbols SymbolNormalizer
}

func NewHandler(stocks StockService, symbols SymbolNormalizer) *Handler {
	return &Handler{stocks: stocks, symbols: symbols}
}

type stockResponse struct {
	Symbol         string                `json:"symbol"`
	CurrencySymbol string                `json:"currency_symbol"`
	Company        *provider.CompanyInfo `json:"company,omitempty"`
	Quote          stockdata.Quote       `json:"quote"`
	Stats          stockdata.Stats       `json:"stats"`
	Metrics        []metrics.Row         `json:"metrics"`
	History        []provider.Bar        `json:"history"`
}

// GetStock handles GET /api/v1/stocks/{symbol}.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	sym, start, end, ok := h.resolve(w, r)
	if !ok {
		return
	}
	res, ok := h.fetch(w, r, sym, start, end)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, stockResponse{
		Symbol:         sym,
		CurrencySymbol: currencySymbol(sym),
		Company:        res.Info,
		Quote:          res.Quote(),
		Stats:          res.Stats(),
		Metrics:        res.Metrics.Rows(),
		History:        res.Bars,
	})
}

// GetHistoryCSV handles GET /api/v1/stocks/{symbol}/history.csv.
func (h *Handler) GetHistoryCSV(w http.ResponseWriter, r *http.Request) {
	sym, start, end, ok := h.resolve(w, r)
	if !ok {
		return
	}
	res, ok := h.fetch(w, r, sym, start, end)
	if !ok {
		return
	}
	name := fmt.Sprintf("%s_historical_data_%s_%s.csv", sym, start.Format("20060102"), end.Format("20060102"))
	writeCSVHeaders(w, name)
	if err := export.WriteHistory(w, res.Bars); err != nil {
		// headers already sent; nothing sensible left to do
		return
	}
}

// GetMetricsCSV handles GET /api/v1/stocks/{symbol}/metrics.csv.
func (h *Handler) GetMetricsCSV(w http.ResponseWriter, r *http.Request) {
	sym, start, end, ok := h.resolve(w, r)
	if !ok {
		return
	}
	res, ok := h.fetch(w, r, sym, start, end)
	if !ok {
		return
	}
	writeCSVHeaders(w, fmt.Sprintf("%s_financial_metrics.csv", sym))
	if err := export.WriteMetrics(w, res.Metrics.Rows()); err != nil {
		return
	}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// resolve normalizes the path symbol and parses the date range, writing the
// 400 response itself when either is invalid.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (string, time.Time, time.Time, bool) {
	raw := mux.Vars(r)["symbol"]
	sym, err := h.symbols.Normalize(r.Context(), raw)
	if err != nil {
		if errors.Is(err, symbol.ErrNoSymbol) {
			respondError(w, http.StatusBadRequest, "no symbol selected")
		} else {
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return "", time.Time{}, time.Time{}, false
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-defaultWindow)
	q := r.URL.Query()
	if v := q.Get("end"); v != "" {
		end, err = time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid end date %q, want YYYY-MM-DD", v))
			return "", time.Time{}, time.Time{}, false
		}
	}
	if v := q.Get("start"); v != "" {
		start, err = time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid start date %q, want YYYY-MM-DD", v))
			return "", time.Time{}, time.Time{}, false
		}
	} else if q.Get("end") != "" {
		start = end.Add(-defaultWindow)
	}
	if start.After(end) {
		respondError(w, http.StatusBadRequest, "start date must not be after end date")
		return "", time.Time{}, time.Time{}, false
	}
	return sym, start, end, true
}

// fetch runs the service call and maps its error taxonomy onto HTTP: no data
// is 404 with the dashboard wording, provider failures are 502.
func (h *Handler) fetch(w http.ResponseWriter, r *http.Request, sym string, start, end time.Time) (*stockdata.Result, bool) {
	res, err := h.stocks.Fetch(r.Context(), sym, start, end)
	if err != nil {
		if errors.Is(err, stockdata.ErrNoData) {
			respondError(w, http.StatusNotFound,
				fmt.Sprintf("No data found for ticker '%s'. Please check the symbol and try again.", sym))
		} else {
			respondError(w, http.StatusBadGateway, fmt.Sprintf("Error retrieving data: %v", err))
		}
		return nil, false
	}
	return res, true
}

// currencySymbol mirrors the dashboard rule: Indian exchange suffixes are
// priced in rupees, everything else is displayed in dollars.
func currencySymbol(sym string) string {
	if strings.Contains(sym, ".NS") || strings.Contains(sym, ".BO") {
		return "₹"
	}
	return "$"
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
