package indicator

import (
	"math"

	"coinsniper/internal/model"
)

// ATR computes the Average True Range with Wilder smoothing over a
// newest-first series. Fewer than period+1 points returns 0.
func ATR(s model.Series, period int) float64 {
	if len(s) < period+1 {
		return 0
	}

	candles := s.Chronological(0) // full series, oldest→newest

	// True range per step needs the previous close, so ranges start at
	// index 1.
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		c := candles[i]
		prevClose := candles[i-1].Close
		tr := math.Max(c.High-c.Low,
			math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
		trs = append(trs, tr)
	}
	if len(trs) < period {
		return 0
	}

	// Seed with the simple average of the first `period` true ranges, then
	// apply Wilder smoothing for the remainder.
	var atr float64
	for i := 0; i < period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)

	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}
