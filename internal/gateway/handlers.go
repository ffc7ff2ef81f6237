package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"coinsniper/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Dashboard is the service surface the gateway exposes.
type Dashboard interface {
	Bundle() *model.ResultBundle
	Refresh(ctx context.Context)
	Simulate(target float64) bool
	ResetSimulation()
	Timeframe() model.Timeframe
	SetTimeframe(ctx context.Context, tf model.Timeframe) bool
	Recommendation(symbol string, capital, riskPercent float64) ([]model.Strategy, model.PositionSize, bool)
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, svc Dashboard, hub *Hub, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", "err", err)
			return
		}
		hub.HandleWS(conn)
	})

	// Latest result bundle. 503 until the first cycle completes.
	mux.HandleFunc("/api/analysis", func(w http.ResponseWriter, r *http.Request) {
		b := svc.Bundle()
		if b == nil {
			writeError(w, http.StatusServiceUnavailable, "analysis not ready")
			return
		}
		writeJSON(w, http.StatusOK, b)
	})

	// Strategy recommendations + ATR position sizing for one symbol.
	// Query params: capital (default 10000), risk (percent, default 1).
	mux.HandleFunc("/api/strategies/", func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/api/strategies/"))
		if symbol == "" || strings.Contains(symbol, "/") {
			writeError(w, http.StatusBadRequest, "symbol required")
			return
		}

		capital := queryFloat(r, "capital", 10000)
		risk := queryFloat(r, "risk", 1.0)
		if capital <= 0 || risk <= 0 {
			writeError(w, http.StatusBadRequest, "capital and risk must be positive")
			return
		}

		strats, sizing, ok := svc.Recommendation(symbol, capital, risk)
		if !ok {
			writeError(w, http.StatusNotFound, "no analysis for symbol "+symbol)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"symbol":     symbol,
			"strategies": strats,
			"sizing":     sizing,
		})
	})

	// Simulation mode: analyze against a hypothetical BTC price.
	mux.HandleFunc("/api/simulate", func(w http.ResponseWriter, r *http.Request) {
		if handlePreflight(w, r) {
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var req struct {
			TargetBTC float64 `json:"target_btc"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if !svc.Simulate(req.TargetBTC) {
			writeError(w, http.StatusBadRequest, "target_btc must be positive")
			return
		}
		writeJSON(w, http.StatusOK, svc.Bundle())
	})

	mux.HandleFunc("/api/simulate/reset", func(w http.ResponseWriter, r *http.Request) {
		if handlePreflight(w, r) {
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		svc.ResetSimulation()
		writeJSON(w, http.StatusOK, svc.Bundle())
	})

	// Force a full universe refetch.
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if handlePreflight(w, r) {
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		svc.Refresh(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// GET lists the supported intervals; POST switches the active one.
	mux.HandleFunc("/api/timeframes", func(w http.ResponseWriter, r *http.Request) {
		if handlePreflight(w, r) {
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"active":     svc.Timeframe(),
				"timeframes": timeframeInfos(),
			})
		case http.MethodPost:
			var req struct {
				Timeframe model.Timeframe `json:"timeframe"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON")
				return
			}
			if !svc.SetTimeframe(r.Context(), req.Timeframe) {
				writeError(w, http.StatusBadRequest, "unsupported timeframe")
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"active": svc.Timeframe()})
		default:
			writeError(w, http.StatusMethodNotAllowed, "GET or POST required")
		}
	})
}

func handlePreflight(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	SetCORS(w)
	w.WriteHeader(http.StatusOK)
	return true
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

type timeframeInfo struct {
	Value model.Timeframe `json:"value"`
	Limit int             `json:"limit"`
}

func timeframeInfos() []timeframeInfo {
	tfs := []model.Timeframe{model.Timeframe4h, model.Timeframe1d, model.Timeframe1w}
	out := make([]timeframeInfo, len(tfs))
	for i, tf := range tfs {
		out[i] = timeframeInfo{Value: tf, Limit: tf.Limit()}
	}
	return out
}
