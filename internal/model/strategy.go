package model

// Strategy is one recommended trading-strategy descriptor. Derived and
// stateless; recomputed on every asset selection.
type Strategy struct {
	Name   string `json:"name"`
	Params string `json:"params"`
	Risk   string `json:"risk"`
	Desc   string `json:"desc"`
	Reason string `json:"reason"`
}

// PositionSize is the ATR-based sizing output for a single entry.
type PositionSize struct {
	ATR           float64 `json:"atr"`
	StopDistance  float64 `json:"stop_distance"`
	StopPrice     float64 `json:"stop_price"`
	RiskAmount    float64 `json:"risk_amount"`
	PositionUnits float64 `json:"position_units"`
	PositionValue float64 `json:"position_value"`
}
