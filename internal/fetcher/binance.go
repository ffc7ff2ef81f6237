package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coinsniper/internal/model"
)

// DefaultBinanceURL is the public Binance spot REST base.
const DefaultBinanceURL = "https://api.binance.com"

// Binance fetches klines and ticker prices from the Binance public API.
type Binance struct {
	BaseURL string
	Client  *http.Client
}

// NewBinance creates a Binance source against the given base URL (the public
// endpoint when empty).
func NewBinance(baseURL string) *Binance {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	return &Binance{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *Binance) Name() string { return "binance" }

// History fetches klines for the symbol and reverses them to the internal
// newest-first convention.
func (b *Binance) History(ctx context.Context, symbol string, tf model.Timeframe) (model.Series, error) {
	pair, ok := model.BinancePairs[symbol]
	if !ok {
		return nil, fmt.Errorf("binance: unknown symbol %q", symbol)
	}

	u := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		b.BaseURL, pair, tf, tf.Limit())

	body, err := b.get(ctx, u)
	if err != nil {
		return nil, err
	}

	// Binance returns [openTime, open, high, low, close, volume, ...]
	// tuples with numeric strings, newest-last.
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("binance decode: %w", err)
	}

	series := make(model.Series, 0, len(raw))
	for _, tuple := range raw {
		if len(tuple) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(tuple[0], &openTime); err != nil {
			continue
		}
		c := model.Candle{
			Timestamp: openTime,
			Date:      model.DateOf(openTime),
			Open:      jsonPrice(tuple[1]),
			High:      jsonPrice(tuple[2]),
			Low:       jsonPrice(tuple[3]),
			Close:     jsonPrice(tuple[4]),
			Volume:    jsonPrice(tuple[5]),
		}
		series = append(series, c)
	}

	// newest-last → newest-first
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}

// TickerPrices fetches current prices for all tracked symbols in one batch
// request. The returned map is keyed by display symbol.
func (b *Binance) TickerPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	pairs := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if p, ok := model.BinancePairs[sym]; ok {
			pairs = append(pairs, p)
		}
	}
	encoded, _ := json.Marshal(pairs)

	u := fmt.Sprintf("%s/api/v3/ticker/price?symbols=%s", b.BaseURL, url.QueryEscape(string(encoded)))
	body, err := b.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("binance ticker decode: %w", err)
	}

	prices := make(map[string]float64, len(raw))
	for _, r := range raw {
		sym := model.SymbolForPair(r.Symbol)
		if sym == "" {
			continue
		}
		if p, err := strconv.ParseFloat(r.Price, 64); err == nil {
			prices[sym] = p
		}
	}
	return prices, nil
}

func (b *Binance) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// jsonPrice parses a Binance numeric-string field ("42000.15") into a float.
func jsonPrice(raw json.RawMessage) float64 {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	var f float64
	json.Unmarshal(raw, &f)
	return f
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
