package fetcher

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"coinsniper/internal/model"
)

// DefaultStreamURL is the public Binance multiplexed stream endpoint.
const DefaultStreamURL = "wss://stream.binance.com:9443"

// StreamStatus reports the lifecycle of a live price stream:
// CONNECTING → CONNECTED → (ERROR | DISCONNECTED).
type StreamStatus string

const (
	StreamConnecting   StreamStatus = "CONNECTING"
	StreamConnected    StreamStatus = "CONNECTED"
	StreamError        StreamStatus = "ERROR"
	StreamDisconnected StreamStatus = "DISCONNECTED"
)

// StreamConfig configures a live ticker stream.
type StreamConfig struct {
	URL     string   // base ws URL; DefaultStreamURL when empty
	Symbols []string // display symbols; each maps to a {pair}@ticker stream

	// OnUpdate receives incremental price ticks. Called from the read
	// goroutine; must not block.
	OnUpdate func(symbol string, price float64)

	// OnStatus receives lifecycle transitions. No automatic reconnect is
	// attempted — after ERROR or DISCONNECTED the caller decides whether
	// to open a new stream.
	OnStatus func(status StreamStatus)

	Log *slog.Logger
}

// Stream is a handle on one live multiplexed ticker connection.
type Stream struct {
	cfg StreamConfig

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// combinedMsg is the Binance combined-stream envelope.
type combinedMsg struct {
	Stream string `json:"stream"`
	Data   struct {
		Pair  string `json:"s"`
		Price string `json:"c"`
	} `json:"data"`
}

// ConnectStream opens a multiplexed ticker stream for the given symbols and
// returns immediately; connection progress is reported through OnStatus.
// Dial failures surface as an ERROR status, never as a panic or error return.
func ConnectStream(cfg StreamConfig) *Stream {
	if cfg.URL == "" {
		cfg.URL = DefaultStreamURL
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	s := &Stream{cfg: cfg}
	go s.run()
	return s
}

// Close tears down the connection. No callbacks are invoked after Close
// returns; it is safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *Stream) run() {
	s.emitStatus(StreamConnecting)

	streams := make([]string, 0, len(s.cfg.Symbols))
	for _, sym := range s.cfg.Symbols {
		if pair, ok := model.BinancePairs[sym]; ok {
			streams = append(streams, strings.ToLower(pair)+"@ticker")
		}
	}
	u := s.cfg.URL + "/stream?streams=" + strings.Join(streams, "/")

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		s.cfg.Log.Error("stream dial failed", "url", s.cfg.URL, "err", err)
		s.emitStatus(StreamError)
		return
	}

	s.mu.Lock()
	if s.closed {
		// Close() raced the dial; drop the connection without leaking it.
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.emitStatus(StreamConnected)
	s.readLoop(conn)
}

func (s *Stream) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if s.isClosed() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.cfg.Log.Info("stream closed by server")
				s.emitStatus(StreamDisconnected)
			} else {
				s.cfg.Log.Warn("stream read error", "err", err)
				s.emitStatus(StreamError)
			}
			return
		}

		var m combinedMsg
		if json.Unmarshal(msg, &m) != nil {
			continue
		}
		sym := model.SymbolForPair(m.Data.Pair)
		if sym == "" {
			continue
		}
		price, err := strconv.ParseFloat(m.Data.Price, 64)
		if err != nil || price <= 0 {
			continue
		}
		s.emitUpdate(sym, price)
	}
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) emitStatus(st StreamStatus) {
	if s.isClosed() || s.cfg.OnStatus == nil {
		return
	}
	s.cfg.OnStatus(st)
}

func (s *Stream) emitUpdate(symbol string, price float64) {
	if s.isClosed() || s.cfg.OnUpdate == nil {
		return
	}
	s.cfg.OnUpdate(symbol, price)
}
