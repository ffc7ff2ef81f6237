// Package strategy maps an asset's class and computed stats to a short list
// of trading-strategy descriptors and provides the ATR position-sizing math.
package strategy

import "coinsniper/internal/model"

// The fixed strategy catalog. Reason is filled per recommendation; the rest
// is static descriptor text.
var (
	trendFollowing = model.Strategy{
		Name:   "Trend Following",
		Params: "EMA 20/50 cross, 2x ATR stop",
		Risk:   "Frequent whipsaw losses in ranging markets",
		Desc:   "Ride strong directional moves and hold until the trend turns.",
	}
	meanReversion = model.Strategy{
		Name:   "Mean Reversion",
		Params: "Bollinger (20, 2), buy RSI < 30",
		Risk:   "Keeps losing through strong one-sided breakouts",
		Desc:   "Buy low and sell high inside a range, betting on the pull back to the mean.",
	}
	gridTrading = model.Strategy{
		Name:   "Grid Trading",
		Params: "Range +/- 15%, 20-50 grids",
		Risk:   "Needs a hard stop below the range, capital efficiency is low",
		Desc:   "Automated buy-low sell-high inside a price band, best for choppy high-volatility coins.",
	}
	macdBreakout = model.Strategy{
		Name:   "MACD Momentum Breakout",
		Params: "MACD (12,26,9) golden cross above zero",
		Risk:   "Many false breakouts, confirm with volume",
		Desc:   "Enter the moment momentum accelerates, suited to swing trades.",
	}
	dca = model.Strategy{
		Name:   "Dollar-Cost Averaging",
		Params: "Fixed weekly buy, double on a 10% dip",
		Risk:   "Needs long-horizon capital, short-term drawdowns on paper",
		Desc:   "The set-and-forget answer to volatility for assets you hold long term.",
	}
	volatilityBreakout = model.Strategy{
		Name:   "Volatility Breakout (Keltner)",
		Params: "Break of Keltner channel (20, 1.5 ATR)",
		Risk:   "False breakouts are frequent",
		Desc:   "Chase the move when price erupts out of a quiet range.",
	}
)

// Asset-class sets driving the recommendation tiers.
var (
	majors = map[string]bool{"BTC": true, "ETH": true, "BNB": true, "SOL": true}
	memes  = map[string]bool{"DOGE": true, "SHIB": true, "PEPE": true}
)
