// Package client connects to a piblackjack server and exposes the remote
// session the same way the frame driver exposes a local one: commands are
// enqueued and snapshots arrive on a channel.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/piblackjack/internal/auth"
	"github.com/lox/piblackjack/internal/game"
	"github.com/lox/piblackjack/internal/server" // Reuse message types
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// ErrDisconnected is returned for commands still in flight when the
// connection ends.
var ErrDisconnected = errors.New("disconnected from server")

// RemoteError is an error reported by the server for one command
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client represents a WebSocket connection to a served session
type Client struct {
	conn      *websocket.Conn
	send      chan *server.Message
	snapshots chan game.Snapshot
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu      sync.Mutex
	pending map[string]chan error
	nextID  uint64
}

// Dial connects to serverURL, presenting token when it is set. http and https URLs are converted to ws and
// wss, and an empty path becomes /ws.
func Dial(ctx context.Context, serverURL, token string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	logger = logger.WithPrefix("client")
	logger.Info("Connecting to server", "url", u.String())

	header := http.Header{}
	auth.SetToken(header, token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:      conn,
		send:      make(chan *server.Message, 64),
		snapshots: make(chan game.Snapshot, 1),
		logger:    logger,
		ctx:       cctx,
		cancel:    cancel,
		pending:   make(map[string]chan error),
	}
	go c.readPump()
	go c.writePump()

	logger.Info("Connected to server")
	return c, nil
}

// Close closes the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has ended
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Snapshots returns the channel of session snapshots. Slow readers only
// see the newest one. The channel is closed when the connection ends.
func (c *Client) Snapshots() <-chan game.Snapshot {
	return c.snapshots
}

// Enqueue sends cmd to the server. The returned channel receives nil once
// the server applied it or the server's error otherwise.
func (c *Client) Enqueue(cmd game.Command) <-chan error {
	result := make(chan error, 1)

	msg, err := server.NewMessage(server.MessageTypeCommand, cmd, time.Now())
	if err != nil {
		result <- err
		return result
	}

	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		result <- ErrDisconnected
		return result
	}
	c.nextID++
	msg.RequestID = strconv.FormatUint(c.nextID, 10)
	c.pending[msg.RequestID] = result
	c.mu.Unlock()

	select {
	case c.send <- msg:
	case <-c.ctx.Done():
		c.resolve(msg.RequestID, ErrDisconnected)
	default:
		c.resolve(msg.RequestID, fmt.Errorf("send buffer full"))
	}
	return result
}

// Submit sends cmd and waits for the server's verdict.
func (c *Client) Submit(ctx context.Context, cmd game.Command) error {
	select {
	case err := <-c.Enqueue(cmd):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) resolve(requestID string, err error) {
	c.mu.Lock()
	result, ok := c.pending[requestID]
	delete(c.pending, requestID)
	c.mu.Unlock()
	if ok {
		result <- err
	}
}

// failPending resolves every outstanding command and refuses new ones
func (c *Client) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, result := range pending {
		result <- ErrDisconnected
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		_ = c.Close()
		c.failPending()
		close(c.snapshots)
	}()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)
		c.handleMessage(&msg)
	}
}

func (c *Client) handleMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeSnapshot:
		var snap game.Snapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			c.logger.Error("Failed to decode snapshot", "error", err)
			return
		}
		select {
		case <-c.snapshots:
		default:
		}
		c.snapshots <- snap

	case server.MessageTypeAck:
		c.resolve(msg.RequestID, nil)

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Error("Failed to decode error", "error", err)
			return
		}
		if msg.RequestID == "" {
			c.logger.Warn("Server error", "code", data.Code, "message", data.Message)
			return
		}
		c.resolve(msg.RequestID, &RemoteError{Code: data.Code, Message: data.Message})

	default:
		c.logger.Debug("No handler for message type", "type", msg.Type)
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				c.resolve(msg.RequestID, ErrDisconnected)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
