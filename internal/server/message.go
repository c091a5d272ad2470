package server

import (
	"encoding/json"
	"time"

	"github.com/lox/piblackjack/internal/game"
)

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server
	MessageTypeCommand MessageType = "command"

	// Server to client
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeAck      MessageType = "ack" // command applied; sent only when it carried a requestId
	MessageTypeError    MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in ErrorData
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeUnknownType     = "unknown_message_type"
	ErrorCodeCommandRejected = "command_rejected"
	ErrorCodeQueueFull       = "queue_full"
	ErrorCodeCommandFailed   = "command_failed"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// CommandData is the payload of a command message
type CommandData = game.Command

// SnapshotData is the payload of a snapshot message
type SnapshotData = game.Snapshot

type AckData struct {
	Kind game.CommandKind `json:"kind"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
