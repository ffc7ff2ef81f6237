package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"coinsniper/internal/model"
)

// klinesJSON builds a Binance-style klines payload (newest-last) with the
// given closes, one bar per day.
func klinesJSON(closes []float64) string {
	out := "["
	for i, c := range closes {
		if i > 0 {
			out += ","
		}
		ts := int64(i) * 86400000
		out += fmt.Sprintf(`[%d,"%f","%f","%f","%f","%f",0,"0",0,"0","0","0"]`,
			ts, c, c+1, c-1, c, 1000.0)
	}
	return out + "]"
}

func TestBinanceHistory_NewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("expected symbol=BTCUSDT, got %s", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("expected interval=1d, got %s", got)
		}
		fmt.Fprint(w, klinesJSON([]float64{100, 110, 120}))
	}))
	defer srv.Close()

	b := NewBinance(srv.URL)
	s, err := b.History(context.Background(), "BTC", model.Timeframe1d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(s))
	}
	// Binance returns newest-last; ingestion must reverse to newest-first.
	if s[0].Close != 120 || s[2].Close != 100 {
		t.Errorf("series not newest-first: head=%.0f tail=%.0f", s[0].Close, s[2].Close)
	}
	if s[0].Date == "" || s[0].High != 121 || s[0].Low != 119 {
		t.Errorf("candle fields not parsed: %+v", s[0])
	}
}

func TestBinanceHistory_UnknownSymbol(t *testing.T) {
	b := NewBinance("http://127.0.0.1:0")
	if _, err := b.History(context.Background(), "NOPE", model.Timeframe1d); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestBinanceTickerPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"symbol":"BTCUSDT","price":"65000.5"},{"symbol":"ETHUSDT","price":"3000"},{"symbol":"JUNKUSDT","price":"1"}]`)
	}))
	defer srv.Close()

	b := NewBinance(srv.URL)
	prices, err := b.TickerPrices(context.Background(), []string{"BTC", "ETH"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices["BTC"] != 65000.5 || prices["ETH"] != 3000 {
		t.Errorf("unexpected prices: %v", prices)
	}
	if _, ok := prices["JUNK"]; ok {
		t.Error("pairs outside the universe must be ignored")
	}
}

func TestCoinGeckoHistory_SyntheticOHLC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/api/v3/coins/bitcoin/market_chart" {
			t.Errorf("unexpected path %s", got)
		}
		// Two distinct days plus a same-day repeat of the second.
		fmt.Fprint(w, `{"prices":[[0,100],[86400000,110],[86500000,111]]}`)
	}))
	defer srv.Close()

	g := NewCoinGecko(srv.URL)
	s, err := g.History(context.Background(), "BTC", model.Timeframe1d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("expected same-day points collapsed to 2 candles, got %d", len(s))
	}
	head := s[0]
	if head.Close != 111 {
		t.Errorf("expected latest same-day point kept, got close=%.0f", head.Close)
	}
	if head.Open != head.Close || head.High != head.Close || head.Low != head.Close {
		t.Errorf("expected synthetic OHLC from price-only data: %+v", head)
	}
	if head.Volume != 0 {
		t.Errorf("expected zero volume on degraded candles, got %.0f", head.Volume)
	}
}

func TestClient_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[[0,100],[86400000,110]]}`)
	}))
	defer fallback.Close()

	c := New(NewBinance(primary.URL), NewCoinGecko(fallback.URL), nil, nil, nil)
	s := c.FetchHistory(context.Background(), "BTC", model.Timeframe1d)
	if len(s) != 2 {
		t.Fatalf("expected fallback data, got %d candles", len(s))
	}
	if s[0].Close != 110 {
		t.Errorf("expected newest-first fallback series, head close=%.0f", s[0].Close)
	}
}

func TestClient_EmptyOnTotalFailure(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer dead.Close()

	c := New(NewBinance(dead.URL), NewCoinGecko(dead.URL), nil, nil, nil)
	s := c.FetchHistory(context.Background(), "BTC", model.Timeframe1d)
	if len(s) != 0 {
		t.Fatalf("expected empty series when every source fails, got %d", len(s))
	}
}

// memCache is a trivial SeriesCache for tests.
type memCache struct {
	data map[string]model.Series
	hits int
}

func (m *memCache) key(symbol string, tf model.Timeframe) string { return symbol + ":" + string(tf) }

func (m *memCache) Get(_ context.Context, symbol string, tf model.Timeframe) (model.Series, bool) {
	s, ok := m.data[m.key(symbol, tf)]
	if ok {
		m.hits++
	}
	return s, ok
}

func (m *memCache) Put(_ context.Context, symbol string, tf model.Timeframe, s model.Series) {
	m.data[m.key(symbol, tf)] = s
}

func TestClient_CacheReadThrough(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, klinesJSON([]float64{100, 110}))
	}))
	defer srv.Close()

	cache := &memCache{data: make(map[string]model.Series)}
	c := New(NewBinance(srv.URL), nil, cache, nil, nil)

	first := c.FetchHistory(context.Background(), "BTC", model.Timeframe1d)
	second := c.FetchHistory(context.Background(), "BTC", model.Timeframe1d)

	if calls != 1 {
		t.Errorf("expected one upstream call with warm cache, got %d", calls)
	}
	if cache.hits != 1 {
		t.Errorf("expected one cache hit, got %d", cache.hits)
	}
	if len(first) != len(second) {
		t.Errorf("cache must return the stored series")
	}
}
