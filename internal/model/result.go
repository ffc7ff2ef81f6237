package model

// Status classifies an asset's current price against its BTC-matched
// historical average.
type Status string

const (
	StatusUndervalued Status = "Undervalued"
	StatusOvervalued  Status = "Overvalued"
	StatusBalanced    Status = "Balanced"
	StatusBenchmark   Status = "Benchmark"
)

// MACD holds the MACD line, its signal line and the histogram (macd − signal).
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bullish reports whether the MACD line sits above its signal line.
func (m MACD) Bullish() bool { return m.MACD > m.Signal }

// AnalysisResult is the per-symbol output of one analysis cycle. It is
// replaced wholesale on every recomputation; only the presentation layer's
// price/sparkline head is patched between cycles.
type AnalysisResult struct {
	Symbol          string    `json:"symbol"`
	CurrentPrice    float64   `json:"current_price"`
	AvgHistPrice    float64   `json:"avg_hist_price"`
	DiffPercent     float64   `json:"diff_percent"`
	Status          Status    `json:"status"`
	SniperScore     int       `json:"sniper_score"` // 0–100 heuristic composite
	WinRate         int       `json:"win_rate"`     // 0–100
	PotentialUpside float64   `json:"potential_upside"`
	Correlation     float64   `json:"correlation"` // heuristic placeholder, not computed
	RSI             int       `json:"rsi"`
	MACD            MACD      `json:"macd"`
	VolumeRatio     float64   `json:"volume_ratio"`
	Sparkline       []float64 `json:"sparkline"` // recent closes normalized into [0.2, 1.0]
}

// HistoryMatch is one benchmark candle whose close fell inside the target
// band, joined with every other symbol's close on the same calendar date.
type HistoryMatch struct {
	Date     string             `json:"date"`
	BTCPrice float64            `json:"btc_price"`
	Closes   map[string]float64 `json:"closes"`
}

// Briefing is the short derived text summary attached to each bundle.
type Briefing struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
}

// ResultBundle is the single source of truth for one analysis cycle. Results
// are sorted descending by sniper score; HistoryMatches is capped at 50.
type ResultBundle struct {
	TargetBTC      float64          `json:"target_btc"`
	CurrentBTC     float64          `json:"current_btc"`
	MatchCount     int              `json:"match_count"`
	Results        []AnalysisResult `json:"results"`
	HistoryMatches []HistoryMatch   `json:"history_matches"`
	Briefing       Briefing         `json:"briefing"`
}

// Result looks up the row for a symbol. Nil when absent (symbol had no data
// or no matched dates this cycle).
func (b *ResultBundle) Result(symbol string) *AnalysisResult {
	for i := range b.Results {
		if b.Results[i].Symbol == symbol {
			return &b.Results[i]
		}
	}
	return nil
}
