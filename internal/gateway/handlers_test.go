package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"coinsniper/internal/model"
)

// fakeDashboard implements Dashboard with canned responses.
type fakeDashboard struct {
	bundle    *model.ResultBundle
	tf        model.Timeframe
	simulated []float64
	resets    int
	refreshes int
}

func (f *fakeDashboard) Bundle() *model.ResultBundle { return f.bundle }
func (f *fakeDashboard) Refresh(context.Context)     { f.refreshes++ }
func (f *fakeDashboard) ResetSimulation()            { f.resets++ }
func (f *fakeDashboard) Timeframe() model.Timeframe  { return f.tf }

func (f *fakeDashboard) Simulate(target float64) bool {
	if target <= 0 {
		return false
	}
	f.simulated = append(f.simulated, target)
	return true
}

func (f *fakeDashboard) SetTimeframe(_ context.Context, tf model.Timeframe) bool {
	if !tf.Valid() {
		return false
	}
	f.tf = tf
	return true
}

func (f *fakeDashboard) Recommendation(symbol string, capital, riskPercent float64) ([]model.Strategy, model.PositionSize, bool) {
	if symbol != "ETH" {
		return nil, model.PositionSize{}, false
	}
	return []model.Strategy{{Name: "Grid Trading"}, {Name: "MACD Momentum Breakout"}, {Name: "Trend Following"}},
		model.PositionSize{RiskAmount: capital * riskPercent / 100}, true
}

func newTestServer(t *testing.T, svc Dashboard) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(nil)
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc, hub, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub
}

func TestAnalysisEndpoint(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d}
	srv, _ := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/api/analysis")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before the first bundle, got %d", resp.StatusCode)
	}

	svc.bundle = &model.ResultBundle{CurrentBTC: 65000}
	resp, err = http.Get(srv.URL + "/api/analysis")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got model.ResultBundle
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.CurrentBTC != 65000 {
		t.Errorf("expected current BTC 65000, got %.0f", got.CurrentBTC)
	}
}

func TestStrategiesEndpoint(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d}
	srv, _ := newTestServer(t, svc)

	// Lowercase symbol in the path is accepted.
	resp, err := http.Get(srv.URL + "/api/strategies/eth?capital=20000&risk=2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got struct {
		Symbol     string             `json:"symbol"`
		Strategies []model.Strategy   `json:"strategies"`
		Sizing     model.PositionSize `json:"sizing"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Symbol != "ETH" || len(got.Strategies) != 3 {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Sizing.RiskAmount != 400 {
		t.Errorf("expected query params forwarded (risk amount 400), got %v", got.Sizing.RiskAmount)
	}

	for path, want := range map[string]int{
		"/api/strategies/DOGE":          http.StatusNotFound,
		"/api/strategies/":              http.StatusBadRequest,
		"/api/strategies/ETH?capital=0": http.StatusBadRequest,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}

func TestSimulateEndpoints(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d, bundle: &model.ResultBundle{}}
	srv, _ := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/api/simulate", "application/json",
		strings.NewReader(`{"target_btc": 90000}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(svc.simulated) != 1 || svc.simulated[0] != 90000 {
		t.Errorf("expected target forwarded, got %v", svc.simulated)
	}

	resp, _ = http.Post(srv.URL+"/api/simulate", "application/json",
		strings.NewReader(`{"target_btc": -1}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-positive target, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(srv.URL + "/api/simulate")
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", resp.StatusCode)
	}

	resp, _ = http.Post(srv.URL+"/api/simulate/reset", "application/json", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || svc.resets != 1 {
		t.Errorf("expected reset forwarded, status=%d resets=%d", resp.StatusCode, svc.resets)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d}
	srv, _ := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || svc.refreshes != 1 {
		t.Errorf("expected refresh triggered, status=%d refreshes=%d", resp.StatusCode, svc.refreshes)
	}
}

func TestTimeframesEndpoint(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d}
	srv, _ := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/api/timeframes")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Active     model.Timeframe `json:"active"`
		Timeframes []timeframeInfo `json:"timeframes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got.Active != model.Timeframe1d || len(got.Timeframes) != 3 {
		t.Errorf("unexpected timeframes payload: %+v", got)
	}

	resp, _ = http.Post(srv.URL+"/api/timeframes", "application/json",
		strings.NewReader(`{"timeframe": "4h"}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || svc.tf != model.Timeframe4h {
		t.Errorf("expected timeframe switched to 4h, status=%d tf=%s", resp.StatusCode, svc.tf)
	}

	resp, _ = http.Post(srv.URL+"/api/timeframes", "application/json",
		strings.NewReader(`{"timeframe": "2h"}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported timeframe, got %d", resp.StatusCode)
	}
}

func TestWebSocketFeed(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d}
	srv, hub := newTestServer(t, svc)

	// Publish before any client connects; the next client must receive it
	// as its initial state.
	hub.Publish(&model.ResultBundle{CurrentBTC: 64000})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var envelope struct {
		Type string             `json:"type"`
		Data model.ResultBundle `json:"data"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Type != "bundle" || envelope.Data.CurrentBTC != 64000 {
		t.Errorf("unexpected initial envelope: %+v", envelope)
	}

	// Live publish reaches the connected client.
	hub.Publish(&model.ResultBundle{CurrentBTC: 65000})
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Data.CurrentBTC != 65000 {
		t.Errorf("expected pushed bundle with BTC 65000, got %.0f", envelope.Data.CurrentBTC)
	}
}

func TestHubClientCount(t *testing.T) {
	svc := &fakeDashboard{tf: model.Timeframe1d}
	srv, hub := newTestServer(t, svc)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatal("expected 1 connected client")
	}

	conn.Close()
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Error("expected client removed after close")
	}
}
