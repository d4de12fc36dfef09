package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"stockdash/internal/httpx"
	"stockdash/internal/provider"
)

// Config controls the Yahoo Finance provider.
type Config struct {
	Name string
	// ChartEndpoint is the base URL of the v8 chart API (no trailing slash).
	ChartEndpoint string
	// QuoteSummaryEndpoint is the base URL of the v10 quoteSummary API.
	QuoteSummaryEndpoint string
	Headers              map[string]string
}

// Provider fetches daily price history and fundamentals from the Yahoo
// Finance public endpoints.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	if cfg.ChartEndpoint == "" {
		cfg.ChartEndpoint = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.QuoteSummaryEndpoint == "" {
		cfg.QuoteSummaryEndpoint = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// chartResponse is the response structure of the Yahoo chart API.
// Quote arrays use pointers because holidays and halts come back as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (p *Provider) History(ctx context.Context, symbol string, start, end time.Time) ([]provider.Bar, error) {
	u := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&events=history",
		p.cfg.ChartEndpoint, url.PathEscape(symbol), start.Unix(), end.Unix())

	body, status, err := p.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("yahoo chart: status %d", status)
		}
		return nil, fmt.Errorf("yahoo chart decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		// Unknown symbols are reported as an API error, not an empty
		// result. That is the no-data case, not a failure.
		if e.Code == "Not Found" || status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo chart: %s: %s", e.Code, e.Description)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart: status %d", status)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	// Keep the last bar per calendar date; the chart API occasionally
	// repeats the current session at the tail.
	byDate := make(map[time.Time]provider.Bar, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o, h, l, c := quote.Open[i], quote.High[i], quote.Low[i], quote.Close[i]
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if day.Before(start.UTC().Truncate(24*time.Hour)) || day.After(end.UTC()) {
			continue
		}
		var vol int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		byDate[day] = provider.Bar{Date: day, Open: *o, High: *h, Low: *l, Close: *c, Volume: vol}
	}

	bars := make([]provider.Bar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// rawValue is Yahoo's {"raw": 123.4, "fmt": "123.40"} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			Price *struct {
				Symbol       string   `json:"symbol"`
				ShortName    string   `json:"shortName"`
				LongName     string   `json:"longName"`
				Currency     string   `json:"currency"`
				ExchangeName string   `json:"exchangeName"`
				MarketCap    rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail *struct {
				TrailingPE       rawValue `json:"trailingPE"`
				ForwardPE        rawValue `json:"forwardPE"`
				DividendYield    rawValue `json:"dividendYield"`
				Beta             rawValue `json:"beta"`
				AverageVolume    rawValue `json:"averageVolume"`
				FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				TrailingEPS rawValue `json:"trailingEps"`
				BookValue   rawValue `json:"bookValue"`
				PriceToBook rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

func (p *Provider) Info(ctx context.Context, symbol string) (*provider.CompanyInfo, error) {
	u := fmt.Sprintf("%s/%s?modules=assetProfile%%2Cprice%%2CsummaryDetail%%2CdefaultKeyStatistics",
		p.cfg.QuoteSummaryEndpoint, url.PathEscape(symbol))

	body, status, err := p.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary: %w", err)
	}

	var qs quoteSummaryResponse
	if err := json.Unmarshal(body, &qs); err != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("yahoo quoteSummary: status %d", status)
		}
		return nil, fmt.Errorf("yahoo quoteSummary decode: %w", err)
	}
	if e := qs.QuoteSummary.Error; e != nil {
		if e.Code == "Not Found" || status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo quoteSummary: %s: %s", e.Code, e.Description)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo quoteSummary: status %d", status)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	r := qs.QuoteSummary.Result[0]
	info := &provider.CompanyInfo{Symbol: symbol}
	if r.Price != nil {
		if r.Price.Symbol != "" {
			info.Symbol = r.Price.Symbol
		}
		info.ShortName = r.Price.ShortName
		info.LongName = r.Price.LongName
		info.Currency = r.Price.Currency
		info.Exchange = r.Price.ExchangeName
		info.Fundamentals.MarketCap = r.Price.MarketCap.Raw
	}
	if r.AssetProfile != nil {
		info.Summary = r.AssetProfile.LongBusinessSummary
	}
	if d := r.SummaryDetail; d != nil {
		info.Fundamentals.TrailingPE = d.TrailingPE.Raw
		info.Fundamentals.ForwardPE = d.ForwardPE.Raw
		info.Fundamentals.DividendYield = d.DividendYield.Raw
		info.Fundamentals.Beta = d.Beta.Raw
		info.Fundamentals.AverageVolume = d.AverageVolume.Raw
		info.Fundamentals.FiftyTwoWeekHigh = d.FiftyTwoWeekHigh.Raw
		info.Fundamentals.FiftyTwoWeekLow = d.FiftyTwoWeekLow.Raw
	}
	if k := r.DefaultKeyStatistics; k != nil {
		info.Fundamentals.TrailingEPS = k.TrailingEPS.Raw
		info.Fundamentals.BookValue = k.BookValue.Raw
		info.Fundamentals.PriceToBook = k.PriceToBook.Raw
	}
	return info, nil
}

func (p *Provider) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
