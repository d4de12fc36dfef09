package provider

import (
	"context"
	"time"
)

// Bar is one daily OHLCV record. Bars returned by a Provider are ordered
// ascending by date with no duplicate dates.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Fundamentals holds the raw metric values for a symbol. Fields are pointers
// because any of them may be absent from the upstream response.
type Fundamentals struct {
	MarketCap        *float64 `json:"market_cap"`
	TrailingPE       *float64 `json:"trailing_pe"`
	TrailingEPS      *float64 `json:"trailing_eps"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low"`
	DividendYield    *float64 `json:"dividend_yield"`
	Beta             *float64 `json:"beta"`
	AverageVolume    *float64 `json:"average_volume"`
	ForwardPE        *float64 `json:"forward_pe"`
	BookValue        *float64 `json:"book_value"`
	PriceToBook      *float64 `json:"price_to_book"`
}

// CompanyInfo is the normalized company record returned by all providers.
type CompanyInfo struct {
	Symbol       string       `json:"symbol"`
	ShortName    string       `json:"short_name"`
	LongName     string       `json:"long_name"`
	Summary      string       `json:"summary,omitempty"`
	Currency     string       `json:"currency,omitempty"`
	Exchange     string       `json:"exchange,omitempty"`
	Fundamentals Fundamentals `json:"fundamentals"`
}

type Provider interface {
	Name() string
	// History returns daily bars for [start, end]. An unknown symbol or an
	// empty range yields an empty slice and a nil error.
	History(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
	// Info returns company info and fundamentals. An unknown symbol yields
	// (nil, nil).
	Info(ctx context.Context, symbol string) (*CompanyInfo, error)
}
