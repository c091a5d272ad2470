package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/piblackjack/internal/driver"
	"github.com/lox/piblackjack/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	driver    *driver.Driver
	clock     quartz.Clock
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper. The connection ends when
// parent is cancelled or the peer goes away.
func NewConnection(parent context.Context, conn *websocket.Conn, d *driver.Driver, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(parent)

	return &Connection{
		conn:   conn,
		driver: d,
		clock:  clock,
		send:   make(chan *Message, 64),
		logger: logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	snapshots, unsubscribe := c.driver.Subscribe()
	go c.writePump(snapshots, unsubscribe)
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump sends queued messages and session snapshots to the client
func (c *Connection) writePump(snapshots <-chan game.Snapshot, unsubscribe func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		unsubscribe()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			msg, err := NewMessage(MessageTypeSnapshot, SnapshotData(snap), c.clock.Now())
			if err != nil {
				c.logger.Error("Failed to encode snapshot", "error", err)
				continue
			}
			if err := c.write(msg); err != nil {
				return
			}

		case msg := <-c.send:
			if err := c.write(msg); err != nil {
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
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"))
			return
		}
	}
}

func (c *Connection) write(msg *Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Error("Failed to write message", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypeCommand:
		var cmd CommandData
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			c.sendError(msg.RequestID, ErrorCodeInvalidMessage, "Failed to parse command data")
			return
		}
		c.handleCommand(msg.RequestID, cmd)

	default:
		c.sendError(msg.RequestID, ErrorCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCommand(requestID string, cmd game.Command) {
	err := c.driver.Submit(c.ctx, cmd)
	switch {
	case err == nil:
		if requestID != "" {
			c.sendAck(requestID, cmd.Kind)
		}
	case errors.Is(err, context.Canceled):
		// Connection closing
	case errors.Is(err, driver.ErrQueueFull):
		c.sendError(requestID, ErrorCodeQueueFull, err.Error())
	case game.IsRecoverable(err):
		c.sendError(requestID, ErrorCodeCommandRejected, err.Error())
	default:
		c.logger.Error("Command failed", "kind", cmd.Kind, "error", err)
		c.sendError(requestID, ErrorCodeCommandFailed, err.Error())
	}
}

func (c *Connection) sendAck(requestID string, kind game.CommandKind) {
	ack, err := NewMessage(MessageTypeAck, AckData{Kind: kind}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create ack message", "error", err)
		return
	}
	ack.RequestID = requestID
	_ = c.SendMessage(ack) // Ignore send errors
}

// sendError sends an error message to the client
func (c *Connection) sendError(requestID, code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	errorMsg.RequestID = requestID

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}
