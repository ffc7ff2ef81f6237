package indicator

import "coinsniper/internal/model"

// MACDLines computes MACD over a newest-first series using the given fast,
// slow and signal periods. The scan is bounded to the most recent macdWindow
// closes in chronological order.
//
// Fewer than 35 points returns the zero value — the analysis layer treats
// that as "no momentum signal".
func MACDLines(s model.Series, fast, slow, signal int) model.MACD {
	if len(s) < macdMinPoints {
		return model.MACD{}
	}

	closes := s.Closes(macdWindow) // chronological, ≤100 points

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := EMA(macdLine, signal)

	last := len(closes) - 1
	return model.MACD{
		MACD:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}
}

// MACDDefault computes MACD with the standard (12, 26, 9) parameters.
func MACDDefault(s model.Series) model.MACD {
	return MACDLines(s, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
}
