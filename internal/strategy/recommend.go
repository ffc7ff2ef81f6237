package strategy

import (
	"fmt"

	"coinsniper/internal/model"
)

// maxRecommendations is the fixed length of a recommendation list.
const maxRecommendations = 3

// withReason copies a catalog entry and attaches the recommendation reason.
func withReason(s model.Strategy, reason string) model.Strategy {
	s.Reason = reason
	return s
}

// Recommend maps an analysis row to exactly 3 strategy descriptors. Tiers in
// priority order: majors, memes, then a stats-driven default mix. Short lists
// are padded with a generic trend-following fallback.
func Recommend(asset model.AnalysisResult) []model.Strategy {
	sym := asset.Symbol
	var out []model.Strategy

	switch {
	case majors[sym]:
		out = append(out,
			withReason(trendFollowing, fmt.Sprintf("As a large-cap major, %s carries the most stable long-run trend to follow.", sym)),
			withReason(dca, fmt.Sprintf("%s is a cornerstone asset with a high long-hold win rate, ideal for scheduled accumulation.", sym)),
			withReason(macdBreakout, "Deep liquidity in majors makes MACD signals noticeably more reliable."),
		)
	case memes[sym]:
		out = append(out,
			withReason(gridTrading, fmt.Sprintf("%s's extreme intraday volatility is exactly what grid bots feed on.", sym)),
			withReason(volatilityBreakout, "Meme coins move in bursts; a confirmed breakout often runs several multiples."),
			withReason(meanReversion, "Violent rallies mean violent pullbacks, so fading the extremes pays well here."),
		)
	default:
		if asset.WinRate > 80 {
			out = append(out, withReason(meanReversion,
				fmt.Sprintf("Backtests put %s's win rate at %d%%, a strongly regular price pattern suited to mean reversion.", sym, asset.WinRate)))
		}
		out = append(out, withReason(macdBreakout, "Well suited to catching swing moves in mid-cap assets."))
		if asset.RSI < 35 {
			out = append(out, withReason(meanReversion, "RSI sits in the oversold zone, so the odds favor a bounce."))
		} else {
			out = append(out, withReason(gridTrading, "Fits automated range arbitrage at the current consolidation band."))
		}
	}

	for len(out) < maxRecommendations {
		out = append(out, withReason(trendFollowing, "General-purpose strategy that holds up in most regimes."))
	}
	return out[:maxRecommendations]
}
