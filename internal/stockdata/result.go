package stockdata

// Stats summarizes the price window for the dashboard header.
type Stats struct {
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	AvgClose  float64 `json:"avg_close"`
	AvgVolume float64 `json:"avg_volume"`
}

// Quote is the latest close with its day-over-day change.
type Quote struct {
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	AsOf      string  `json:"as_of"`
}

// Stats computes window statistics over the bars. Zero value for an empty
// series.
func (r *Result) Stats() Stats {
	if len(r.Bars) == 0 {
		return Stats{}
	}
	s := Stats{High: r.Bars[0].High, Low: r.Bars[0].Low}
	var closeSum, volSum float64
	for _, b := range r.Bars {
		if b.High > s.High {
			s.High = b.High
		}
		if b.Low < s.Low {
			s.Low = b.Low
		}
		closeSum += b.Close
		volSum += float64(b.Volume)
	}
	n := float64(len(r.Bars))
	s.AvgClose = closeSum / n
	s.AvgVolume = volSum / n
	return s
}

// Quote derives the current price and change from the last two bars. With a
// single bar the change is zero.
func (r *Result) Quote() Quote {
	if len(r.Bars) == 0 {
		return Quote{}
	}
	last := r.Bars[len(r.Bars)-1]
	q := Quote{Price: last.Close, AsOf: last.Date.Format("2006-01-02")}
	if len(r.Bars) > 1 {
		prev := r.Bars[len(r.Bars)-2].Close
		q.Change = last.Close - prev
		if prev != 0 {
			q.ChangePct = q.Change / prev * 100
		}
	}
	return q
}
