// Package metrics builds and formats the fixed table of financial metrics
// shown on the dashboard. Formatting is pure: no I/O, same input same output.
package metrics

import (
	"github.com/shopspring/decimal"

	"stockdash/internal/provider"
)

// NotAvailable is the display sentinel for missing values.
const NotAvailable = "N/A"

// Value is one raw metric; a nil Raw means the provider had no value.
type Value struct {
	Name string   `json:"name"`
	Raw  *float64 `json:"raw"`
}

// Snapshot is the fixed, ordered list of metrics for one symbol.
type Snapshot []Value

// Build maps fundamentals onto the fixed metric list. The order here is the
// display order of the metrics table and of the CSV export.
func Build(f provider.Fundamentals) Snapshot {
	return Snapshot{
		{"Market Cap", f.MarketCap},
		{"P/E Ratio", f.TrailingPE},
		{"EPS", f.TrailingEPS},
		{"52 Week High", f.FiftyTwoWeekHigh},
		{"52 Week Low", f.FiftyTwoWeekLow},
		{"Dividend Yield", f.DividendYield},
		{"Beta", f.Beta},
		{"Average Volume", f.AverageVolume},
		{"Forward P/E", f.ForwardPE},
		{"Book Value", f.BookValue},
		{"Price to Book", f.PriceToBook},
	}
}

// Row is one formatted line of the metrics table.
type Row struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// Rows formats the snapshot for display. Each field is formatted
// independently; order follows the snapshot.
func (s Snapshot) Rows() []Row {
	rows := make([]Row, 0, len(s))
	for _, v := range s {
		rows = append(rows, Row{Metric: v.Name, Value: formatValue(v.Name, v.Raw)})
	}
	return rows
}

var hundred = decimal.NewFromInt(100)

func formatValue(name string, raw *float64) string {
	if raw == nil {
		return NotAvailable
	}
	v := *raw
	switch name {
	case "Market Cap":
		switch {
		case v >= 1e9:
			return "$" + decimal.NewFromFloat(v/1e9).StringFixed(2) + "B"
		case v >= 1e6:
			return "$" + decimal.NewFromFloat(v/1e6).StringFixed(2) + "M"
		default:
			// Sub-million market caps are left unscaled.
			return decimal.NewFromFloat(v).String()
		}
	case "Dividend Yield":
		if v == 0 {
			return NotAvailable
		}
		return decimal.NewFromFloat(v).Mul(hundred).StringFixed(2) + "%"
	default:
		return decimal.NewFromFloat(v).StringFixed(2)
	}
}
