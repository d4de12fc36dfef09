// Package export serializes price history and metric tables as CSV for
// download. Column order is fixed and the date/index column always comes
// first; output is plain UTF-8.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"stockdash/internal/metrics"
	"stockdash/internal/provider"
)

var historyHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// WriteHistory writes bars as CSV, one row per trading day.
func WriteHistory(w io.Writer, bars []provider.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range bars {
		rec := []string{
			b.Date.Format("2006-01-02"),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadHistory parses CSV produced by WriteHistory back into bars.
func ReadHistory(r io.Reader) ([]provider.Bar, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(historyHeader) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}
	for i, col := range historyHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header %v", header)
		}
	}

	var bars []provider.Bar
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", rec[0], err)
		}
		var b provider.Bar
		b.Date = date
		if b.Open, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("parse open %q: %w", rec[1], err)
		}
		if b.High, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("parse high %q: %w", rec[2], err)
		}
		if b.Low, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("parse low %q: %w", rec[3], err)
		}
		if b.Close, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("parse close %q: %w", rec[4], err)
		}
		if b.Volume, err = strconv.ParseInt(rec[5], 10, 64); err != nil {
			return nil, fmt.Errorf("parse volume %q: %w", rec[5], err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// WriteMetrics writes the formatted metrics table.
func WriteMetrics(w io.Writer, rows []metrics.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Metric, row.Value}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat keeps full precision so an export/import cycle is lossless.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
