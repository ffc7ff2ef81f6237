package model

import "time"

// Candle is one OHLCV bar for a single symbol. Prices are USD floats as
// returned by the exchange APIs; Date is the calendar day ("2006-01-02") and
// is unique within one symbol's series.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // epoch milliseconds (bar open time)
	Date      string  `json:"date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// DateOf formats an epoch-millisecond timestamp as a UTC calendar day.
func DateOf(tsMillis int64) string {
	return time.UnixMilli(tsMillis).UTC().Format("2006-01-02")
}

// Series is an ordered candle sequence for one symbol, stored newest-first.
type Series []Candle

// Closes returns the close prices of the most recent n candles in
// chronological (oldest→newest) order. n <= 0 or n > len returns all closes.
func (s Series) Closes(n int) []float64 {
	if n <= 0 || n > len(s) {
		n = len(s)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s[n-1-i].Close // series is newest-first
	}
	return out
}

// Chronological returns the most recent n candles in oldest→newest order.
func (s Series) Chronological(n int) []Candle {
	if n <= 0 || n > len(s) {
		n = len(s)
	}
	out := make([]Candle, n)
	for i := 0; i < n; i++ {
		out[i] = s[n-1-i]
	}
	return out
}

// SeriesMap maps symbol ticker → candle series. It is treated as an immutable
// snapshot: writers build a fresh map (or fresh slices) and swap it in whole.
type SeriesMap map[string]Series
