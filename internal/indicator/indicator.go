// Package indicator provides snapshot technical indicator calculations over
// candle series.
//
// Unlike a streaming engine, every function here recomputes from the series
// it is handed — the dashboard replaces its snapshot wholesale on each cycle,
// so there is no incremental state to maintain. All functions tolerate short
// series by returning a defined neutral/zero value instead of an error.
package indicator

// Default periods used by the analysis engine.
const (
	DefaultRSIPeriod  = 14
	DefaultATRPeriod  = 14
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9

	// macdWindow bounds how much history the MACD scan walks; EMA values
	// further back contribute nothing measurable to the current line.
	macdWindow = 100

	// macdMinPoints is the minimum series length for a meaningful MACD
	// (slow period + signal period).
	macdMinPoints = 35
)
