package tui

import (
	"github.com/lox/piblackjack/internal/game"
)

// EventFeed carries session events from the frame goroutine to the TUI.
// Events are dropped rather than blocking a frame when the TUI falls behind.
type EventFeed struct {
	events chan game.GameEvent
}

// NewEventFeed creates a feed buffering up to size events.
func NewEventFeed(size int) *EventFeed {
	return &EventFeed{events: make(chan game.GameEvent, size)}
}

// OnEvent implements game.EventSubscriber.
func (f *EventFeed) OnEvent(event game.GameEvent) {
	select {
	case f.events <- event:
	default:
	}
}

// Events returns the receive side of the feed.
func (f *EventFeed) Events() <-chan game.GameEvent {
	return f.events
}
