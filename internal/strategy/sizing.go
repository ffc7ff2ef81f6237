package strategy

import "coinsniper/internal/model"

// DefaultATRMultiplier scales ATR into the stop-loss distance.
const DefaultATRMultiplier = 2.0

// Size computes ATR-based position sizing for one entry. A zero ATR yields a
// zero-unit position with the stop pinned at the current price.
func Size(currentPrice, atr, capital, riskPercent, atrMultiplier float64) model.PositionSize {
	stopDistance := atrMultiplier * atr
	riskAmount := capital * riskPercent / 100

	units := 0.0
	if atr > 0 {
		units = riskAmount / stopDistance
	}

	return model.PositionSize{
		ATR:           atr,
		StopDistance:  stopDistance,
		StopPrice:     currentPrice - stopDistance,
		RiskAmount:    riskAmount,
		PositionUnits: units,
		PositionValue: units * currentPrice,
	}
}
