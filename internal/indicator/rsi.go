package indicator

import "coinsniper/internal/model"

// RSI computes the Relative Strength Index over the most recent period+1
// closes of a newest-first series.
//
// Fewer than period+1 points returns the neutral value 50. A window with no
// losing days returns 100.
func RSI(s model.Series, period int) float64 {
	if len(s) < period+1 {
		return 50
	}

	closes := s.Closes(period + 1) // chronological
	var gains, losses float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	if losses == 0 {
		return 100
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - (100 / (1 + rs))
}
