package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v5"
	"go.uber.org/zap"

	"xsmodels/metrics"
)

// Feed message types.
const (
	FeedMessageCall   = "call"
	FeedMessageStatus = "status"
)

// FeedMessage is the envelope of every message on the call feed.
type FeedMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// FeedConfig tunes the websocket connections.
type FeedConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		PingInterval: 30 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    10 * time.Second,
		SendBuffer:   64,
	}
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed pushes every recorded model call to connected websocket clients.
// Clients that fall behind are dropped.
type Feed struct {
	cfg      FeedConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
}

func NewFeed(cfg FeedConfig, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultFeedConfig().SendBuffer
	}
	return &Feed{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*feedClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Publish sends rec to every client. It never blocks. Its signature fits
// metrics.StoreConfig.Sink.
func (f *Feed) Publish(rec metrics.CallRecord) {
	f.broadcast(FeedMessage{Type: FeedMessageCall, Timestamp: time.Now(), Data: rec})
}

func (f *Feed) broadcast(msg FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		f.logger.Warn("feed marshal failed", zap.Error(err))
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			f.logger.Debug("feed client too slow, dropping", zap.String("remote", c.conn.RemoteAddr().String()))
			f.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client and refuses new ones.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for c := range f.clients {
		f.removeLocked(c)
	}
	return nil
}

func (f *Feed) removeLocked(c *feedClient) {
	if _, ok := f.clients[c]; !ok {
		return
	}
	delete(f.clients, c)
	close(c.send)
}

func (f *Feed) remove(c *feedClient) {
	f.mu.Lock()
	f.removeLocked(c)
	f.mu.Unlock()
}

// serve upgrades the request and keeps the connection until the client
// leaves. status, when non-nil, is sent first.
func (f *Feed) serve(w http.ResponseWriter, r *http.Request, status any) error {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &feedClient{conn: conn, send: make(chan []byte, f.cfg.SendBuffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return nil
	}
	if status != nil {
		if data, err := json.Marshal(FeedMessage{Type: FeedMessageStatus, Timestamp: time.Now(), Data: status}); err == nil {
			c.send <- data
		}
	}
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	go f.writePump(c)
	f.readPump(c)
	return nil
}

// readPump discards client messages and notices disconnects.
func (f *Feed) readPump(c *feedClient) {
	defer f.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(f.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(f.cfg.PongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Debug("feed client closed", zap.Error(err))
			}
			return
		}
	}
}

func (f *Feed) writePump(c *feedClient) {
	ticker := time.NewTicker(f.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(f.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(f.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleCallFeed(c *echo.Context) error {
	if s.feed == nil {
		return writeError(c, http.StatusNotFound, "not_found", "the call feed is not enabled")
	}
	var status any
	if s.metrics != nil {
		status = s.metrics.GetSystemStatus()
	}
	c.Set(ctxStatus, http.StatusSwitchingProtocols)
	return s.feed.serve(c.Response(), c.Request(), status)
}
