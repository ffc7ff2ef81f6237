package model

// Benchmark is the reference asset whose historical price level drives
// date-matching for every other symbol.
const Benchmark = "BTC"

// Symbols is the fixed tracked universe, benchmark first. Adding a symbol
// requires updating BinancePairs and CoinGeckoIDs as well.
var Symbols = []string{"BTC", "ETH", "SOL", "BNB", "XRP", "ADA", "DOGE", "DOT", "LINK", "AVAX"}

// BinancePairs maps display symbols to Binance spot pair identifiers.
var BinancePairs = map[string]string{
	"BTC": "BTCUSDT", "ETH": "ETHUSDT", "SOL": "SOLUSDT", "BNB": "BNBUSDT",
	"XRP": "XRPUSDT", "ADA": "ADAUSDT", "DOGE": "DOGEUSDT", "DOT": "DOTUSDT",
	"LINK": "LINKUSDT", "AVAX": "AVAXUSDT",
}

// CoinGeckoIDs maps display symbols to CoinGecko asset identifiers for the
// fallback source.
var CoinGeckoIDs = map[string]string{
	"BTC": "bitcoin", "ETH": "ethereum", "SOL": "solana", "BNB": "binancecoin",
	"XRP": "ripple", "ADA": "cardano", "DOGE": "dogecoin", "DOT": "polkadot",
	"LINK": "chainlink", "AVAX": "avalanche-2",
}

// SymbolForPair reverses BinancePairs ("BTCUSDT" → "BTC"). Empty string when
// the pair is not in the universe.
func SymbolForPair(pair string) string {
	for sym, p := range BinancePairs {
		if p == pair {
			return sym
		}
	}
	return ""
}

// Timeframe selects the candle interval for history fetches.
type Timeframe string

const (
	Timeframe4h Timeframe = "4h"
	Timeframe1d Timeframe = "1d"
	Timeframe1w Timeframe = "1w"
)

// Valid reports whether tf is one of the supported intervals.
func (tf Timeframe) Valid() bool {
	switch tf {
	case Timeframe4h, Timeframe1d, Timeframe1w:
		return true
	}
	return false
}

// Limit returns the fetch window size (number of candles) for the timeframe:
// roughly one year of 1d bars, and comparable spans for 4h and 1w.
func (tf Timeframe) Limit() int {
	switch tf {
	case Timeframe4h:
		return 500
	case Timeframe1w:
		return 200
	default:
		return 365
	}
}
