package analysis

import (
	"fmt"
	"strings"

	"coinsniper/internal/model"
)

// briefing derives the short sentiment summary for a bundle. The framing
// turns bullish when more than half of the non-benchmark rows read
// Undervalued; otherwise it stays neutral.
func (e *Engine) briefing(results []model.AnalysisResult, btcPrice float64) model.Briefing {
	undervalued := 0
	nonBenchmark := 0
	for _, r := range results {
		if r.Status == model.StatusBenchmark {
			continue
		}
		nonBenchmark++
		if r.Status == model.StatusUndervalued {
			undervalued++
		}
	}

	sentiment := "Neutral / Wait-and-see"
	summary := fmt.Sprintf("BTC is currently trading at $%s.", formatUSD(btcPrice))
	if nonBenchmark > 0 && undervalued*2 > nonBenchmark {
		sentiment = "Bullish opportunity"
		summary += " Broad undervaluation signals across the board — historically a favorable accumulation zone."
	} else {
		summary += " Risk/reward across the tracked assets looks balanced at this BTC level."
	}

	return model.Briefing{
		Title:     "Market sentiment: " + sentiment,
		Summary:   summary,
		Timestamp: e.now().Format("15:04"),
	}
}

// formatUSD renders a price with thousands separators and two decimals for
// sub-1000 values ("65,432" / "0.53").
func formatUSD(v float64) string {
	if v < 1000 {
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	}
	whole := int64(v)
	var parts []string
	for whole >= 1000 {
		parts = append([]string{fmt.Sprintf("%03d", whole%1000)}, parts...)
		whole /= 1000
	}
	parts = append([]string{fmt.Sprintf("%d", whole)}, parts...)
	return strings.Join(parts, ",")
}
