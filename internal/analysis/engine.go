// Package analysis matches historical dates by benchmark-price proximity and
// derives per-asset statistics, scores and rankings from them.
package analysis

import (
	"math"
	"sort"
	"time"

	"coinsniper/internal/indicator"
	"coinsniper/internal/model"
)

// MatchThreshold is the benchmark-price proximity band: a candle matches when
// its close lies within ±2% of the target (inclusive bounds).
const MatchThreshold = 0.02

// historyMatchCap bounds the history_matches list in the bundle.
const historyMatchCap = 50

// Engine computes Result Bundles over series snapshots. It holds no mutable
// state between cycles; every Analyze call works from the snapshot it is
// handed.
type Engine struct {
	Symbols   []string
	Benchmark string

	// now is the clock for briefing timestamps; overridable in tests.
	now func() time.Time
}

// NewEngine creates an analysis engine over the given universe.
func NewEngine(symbols []string, benchmark string) *Engine {
	return &Engine{Symbols: symbols, Benchmark: benchmark, now: time.Now}
}

// Analyze builds a Result Bundle from the series snapshot. target selects the
// benchmark price level to match against; nil (or non-positive) defaults to
// the benchmark's most recent close. Returns nil when the benchmark series is
// empty or absent — callers keep their previous bundle in that case.
func (e *Engine) Analyze(data model.SeriesMap, target *float64) *model.ResultBundle {
	bench := data[e.Benchmark]
	if len(bench) == 0 {
		return nil
	}
	currentBTC := bench[0].Close

	targetBTC := currentBTC
	if target != nil && *target > 0 {
		targetBTC = *target
	}

	matched := matchIndices(bench, targetBTC)

	results := make([]model.AnalysisResult, 0, len(e.Symbols))
	for _, sym := range e.Symbols {
		hist := data[sym]
		if len(hist) == 0 {
			continue
		}
		if sym == e.Benchmark {
			results = append(results, e.benchmarkResult(hist))
			continue
		}
		if r, ok := e.assetResult(sym, hist, matched, bench); ok {
			results = append(results, r)
		}
	}

	// Descending by sniper score; ties keep symbol iteration order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SniperScore > results[j].SniperScore
	})

	return &model.ResultBundle{
		TargetBTC:      targetBTC,
		CurrentBTC:     currentBTC,
		MatchCount:     len(matched),
		Results:        results,
		HistoryMatches: historyMatches(bench, matched, data, e.Symbols, e.Benchmark),
		Briefing:       e.briefing(results, currentBTC),
	}
}

// matchIndices scans the benchmark series and returns the indices whose close
// lies inside the ±2% band around target, preserving the series' order.
func matchIndices(bench model.Series, target float64) []int {
	lo := target * (1 - MatchThreshold)
	hi := target * (1 + MatchThreshold)

	var matched []int
	for i, c := range bench {
		if c.Close >= lo && c.Close <= hi {
			matched = append(matched, i)
		}
	}
	return matched
}

// benchmarkResult builds the fixed neutral row for the benchmark symbol.
func (e *Engine) benchmarkResult(hist model.Series) model.AnalysisResult {
	current := hist[0].Close
	return model.AnalysisResult{
		Symbol:       e.Benchmark,
		CurrentPrice: current,
		AvgHistPrice: current,
		DiffPercent:  0,
		Status:       model.StatusBenchmark,
		SniperScore:  50,
		WinRate:      50,
		Correlation:  1.0,
		RSI:          int(math.Round(indicator.RSI(hist, indicator.DefaultRSIPeriod))),
		MACD:         indicator.MACDDefault(hist),
		VolumeRatio:  1.0,
		Sparkline:    Sparkline(hist, SparklineLength),
	}
}

// assetResult derives the stats for one non-benchmark symbol. ok is false
// when none of the matched indices land inside this symbol's series.
func (e *Engine) assetResult(sym string, hist model.Series, matched []int, bench model.Series) (model.AnalysisResult, bool) {
	current := hist[0].Close

	var histCloses []float64
	for _, i := range matched {
		if i < len(hist) {
			histCloses = append(histCloses, hist[i].Close)
		}
	}
	if len(histCloses) == 0 {
		return model.AnalysisResult{}, false
	}

	var sum float64
	wins := 0
	for _, p := range histCloses {
		sum += p
		if p > current {
			wins++
		}
	}
	avgHist := sum / float64(len(histCloses))
	diffPct := (current - avgHist) / avgHist * 100
	winRate := float64(wins) / float64(len(histCloses)) * 100

	upside := 0.0
	if current < avgHist {
		upside = (avgHist - current) / current * 100
	}

	rsi := indicator.RSI(hist, indicator.DefaultRSIPeriod)
	macd := indicator.MACDDefault(hist)
	score := sniperScore(diffPct, winRate, rsi, macd)

	status := model.StatusBalanced
	if diffPct < -10 {
		status = model.StatusUndervalued
	} else if diffPct > 10 {
		status = model.StatusOvervalued
	}

	return model.AnalysisResult{
		Symbol:          sym,
		CurrentPrice:    current,
		AvgHistPrice:    avgHist,
		DiffPercent:     diffPct,
		Status:          status,
		SniperScore:     score,
		WinRate:         int(math.Round(winRate)),
		PotentialUpside: upside,
		Correlation:     0.85, // heuristic placeholder, see design notes
		RSI:             int(math.Round(rsi)),
		MACD:            macd,
		VolumeRatio:     1.0,
		Sparkline:       Sparkline(hist, SparklineLength),
	}, true
}

// sniperScore accumulates the heuristic adjustments onto the neutral 50 and
// clamps into [0, 100].
func sniperScore(diffPct, winRate, rsi float64, macd model.MACD) int {
	score := 50.0

	switch {
	case diffPct < -10:
		score += 20
	case diffPct < 0:
		score += 10
	case diffPct > 10:
		score -= 20
	}

	if winRate > 80 {
		score += 15
	}

	if rsi < 30 {
		score += 15
	} else if rsi > 70 {
		score -= 15
	}

	if macd.Bullish() {
		score += 10
	} else {
		score -= 10
	}

	return int(math.Min(100, math.Max(0, math.Round(score))))
}

// historyMatches pairs the first 50 matched benchmark candles with every
// other symbol's close on the same calendar day. The join is by date, not
// index — series lengths differ between symbols.
func historyMatches(bench model.Series, matched []int, data model.SeriesMap, symbols []string, benchmark string) []model.HistoryMatch {
	n := len(matched)
	if n > historyMatchCap {
		n = historyMatchCap
	}

	// date → close index per non-benchmark symbol
	byDate := make(map[string]map[string]float64, len(symbols))
	for _, sym := range symbols {
		if sym == benchmark {
			continue
		}
		hist := data[sym]
		if len(hist) == 0 {
			continue
		}
		idx := make(map[string]float64, len(hist))
		for _, c := range hist {
			idx[c.Date] = c.Close
		}
		byDate[sym] = idx
	}

	out := make([]model.HistoryMatch, 0, n)
	for _, i := range matched[:n] {
		c := bench[i]
		closes := make(map[string]float64)
		for sym, idx := range byDate {
			if price, ok := idx[c.Date]; ok {
				closes[sym] = price
			}
		}
		out = append(out, model.HistoryMatch{
			Date:     c.Date,
			BTCPrice: c.Close,
			Closes:   closes,
		})
	}
	return out
}
