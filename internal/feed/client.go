// Package feed consumes the realtime trade datastream for a token.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solanajackbot/internal/observability"
)

// Config configures datastream client behavior.
type Config struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default datastream configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Client is a websocket client for the trade datastream's room
// protocol: subscribers join a room and receive message envelopes
// tagged with that room. Reconnects rejoin all active rooms.
type Client struct {
	endpoint string
	config   Config
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// rooms maps room name to delivery channel
	rooms   map[string]chan json.RawMessage
	roomsMu sync.RWMutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// outgoing room control message.
type roomRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// incoming envelope.
type roomEnvelope struct {
	Type string          `json:"type"`
	Room string          `json:"room"`
	Data json.RawMessage `json:"data"`
}

// NewClient creates a datastream client and connects to the endpoint.
func NewClient(ctx context.Context, endpoint string, config *Config, logger *log.Logger) (*Client, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[feed] ", log.LstdFlags|log.Lshortfile)
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		rooms:    make(map[string]chan json.RawMessage),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the websocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// TradeRoom returns the room name carrying transactions for a mint.
func TradeRoom(mint string) string {
	return "transaction:" + mint
}

// SubscribeTokenTrades joins the trade room for a mint and returns the
// channel of raw trade payloads. Slow consumers drop messages rather
// than stall the read loop.
func (c *Client) SubscribeTokenTrades(ctx context.Context, mint string) (<-chan json.RawMessage, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	room := TradeRoom(mint)

	c.roomsMu.Lock()
	if _, exists := c.rooms[room]; exists {
		c.roomsMu.Unlock()
		return nil, fmt.Errorf("already subscribed to %s", room)
	}
	ch := make(chan json.RawMessage, 256)
	c.rooms[room] = ch
	c.roomsMu.Unlock()

	if err := c.writeJSON(roomRequest{Type: "join", Room: room}); err != nil {
		c.roomsMu.Lock()
		delete(c.rooms, room)
		c.roomsMu.Unlock()
		return nil, fmt.Errorf("join room: %w", err)
	}

	return ch, nil
}

// writeJSON writes a message under the connection lock.
func (c *Client) writeJSON(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(v)
}

// readLoop reads messages and dispatches envelopes to room channels.
// On read errors it triggers reconnection with exponential backoff.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for {
		if c.closed.Load() {
			return
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// handleMessage routes a message envelope to its room channel.
// Anything that is not a well-formed envelope for a joined room is
// ignored; the stream also carries acks and server pings.
func (c *Client) handleMessage(message []byte) {
	var env roomEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}
	if env.Type != "message" || env.Room == "" {
		return
	}

	c.roomsMu.RLock()
	ch, ok := c.rooms[env.Room]
	c.roomsMu.RUnlock()
	if !ok {
		return
	}

	select {
	case ch <- env.Data:
	default:
		c.logger.Printf("dropping message for %s: consumer too slow", env.Room)
	}
}

// reconnect attempts to reconnect and rejoin all rooms.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	observability.RecordFeedReconnect()
	c.logger.Printf("reconnected to %s", c.endpoint)

	// Rejoin all active rooms
	c.roomsMu.RLock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.roomsMu.RUnlock()

	for _, room := range rooms {
		if err := c.writeJSON(roomRequest{Type: "join", Room: room}); err != nil {
			c.logger.Printf("rejoin %s failed: %v", room, err)
		}
	}
}

// pingLoop sends ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// Close shuts down the client and closes all room channels.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	c.wg.Wait()

	c.roomsMu.Lock()
	for room, ch := range c.rooms {
		close(ch)
		delete(c.rooms, room)
	}
	c.roomsMu.Unlock()

	return nil
}
