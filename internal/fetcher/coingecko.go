package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"coinsniper/internal/model"
)

// DefaultCoinGeckoURL is the public CoinGecko REST base.
const DefaultCoinGeckoURL = "https://api.coingecko.com"

// CoinGecko is the fallback history source. Its market_chart endpoint only
// carries a price per point, so candles are degraded to synthetic OHLC with
// open=high=low=close and zero volume.
type CoinGecko struct {
	BaseURL string
	Client  *http.Client
	Days    int
}

// NewCoinGecko creates a CoinGecko source against the given base URL (the
// public endpoint when empty).
func NewCoinGecko(baseURL string) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGecko{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
		Days:    365,
	}
}

func (g *CoinGecko) Name() string { return "coingecko" }

// History fetches the USD market chart for the symbol. The timeframe is
// ignored — CoinGecko's daily granularity is the only window the fallback
// offers, which is acceptable for a degraded path.
func (g *CoinGecko) History(ctx context.Context, symbol string, _ model.Timeframe) (model.Series, error) {
	id, ok := model.CoinGeckoIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("coingecko: unknown symbol %q", symbol)
	}

	u := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?vs_currency=usd&days=%d", g.BaseURL, id, g.Days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}

	var chart struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("coingecko decode: %w", err)
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("coingecko: no prices for %s", id)
	}

	series := make(model.Series, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		ts := int64(p[0])
		price := p[1]
		date := model.DateOf(ts)
		// The final chart point repeats the current day; keep the latest
		// one so dates stay unique within the series.
		if n := len(series); n > 0 && series[n-1].Date == date {
			series = series[:n-1]
		}
		series = append(series, model.Candle{
			Timestamp: ts,
			Date:      date,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    0,
		})
	}

	// newest-last → newest-first
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}
