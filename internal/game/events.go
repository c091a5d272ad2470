package game

import (
	"time"

	"github.com/lox/piblackjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round events
const (
	EventTypePhaseChange        EventType = "phase_change"
	EventTypeBetConfirmed       EventType = "bet_confirmed"
	EventTypeCardQueued         EventType = "card_queued"
	EventTypeCardCommitted      EventType = "card_committed"
	EventTypeDealerReveal       EventType = "dealer_reveal"
	EventTypeWildAssigned       EventType = "wild_assigned"
	EventTypeWildInputDiscarded EventType = "wild_input_discarded"
	EventTypeDeckRebuilt        EventType = "deck_rebuilt"
	EventTypeRoundSettled       EventType = "round_settled"
	EventTypeSessionReset       EventType = "session_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a session
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// PhaseChangeEvent is published on every phase transition
type PhaseChangeEvent struct {
	From      Phase
	To        Phase
	Round     int
	timestamp time.Time
}

func (e PhaseChangeEvent) EventType() EventType { return EventTypePhaseChange }
func (e PhaseChangeEvent) Timestamp() time.Time { return e.timestamp }

// BetConfirmedEvent is published when a bet is locked in and debited
type BetConfirmedEvent struct {
	Bet          int
	BalanceAfter int
	AllIn        bool
	timestamp    time.Time
}

func (e BetConfirmedEvent) EventType() EventType { return EventTypeBetConfirmed }
func (e BetConfirmedEvent) Timestamp() time.Time { return e.timestamp }

// CardQueuedEvent is published when a placement is enqueued
type CardQueuedEvent struct {
	Seat      Seat
	FaceDown  bool
	Queued    int
	timestamp time.Time
}

func (e CardQueuedEvent) EventType() EventType { return EventTypeCardQueued }
func (e CardQueuedEvent) Timestamp() time.Time { return e.timestamp }

// CardCommittedEvent is published when a card lands in a hand
type CardCommittedEvent struct {
	Seat      Seat
	Card      deck.Card
	HandSize  int
	timestamp time.Time
}

func (e CardCommittedEvent) EventType() EventType { return EventTypeCardCommitted }
func (e CardCommittedEvent) Timestamp() time.Time { return e.timestamp }

// DealerRevealEvent is published when the dealer flips the hole card
type DealerRevealEvent struct {
	Cards     []deck.Card
	timestamp time.Time
}

func (e DealerRevealEvent) EventType() EventType { return EventTypeDealerReveal }
func (e DealerRevealEvent) Timestamp() time.Time { return e.timestamp }

// WildAssignedEvent is published when a wild card receives its value
type WildAssignedEvent struct {
	WildAssignment
	Automatic bool
	timestamp time.Time
}

func (e WildAssignedEvent) EventType() EventType { return EventTypeWildAssigned }
func (e WildAssignedEvent) Timestamp() time.Time { return e.timestamp }

// WildInputDiscardedEvent is published when typed wild input is rejected
type WildInputDiscardedEvent struct {
	Input     string
	timestamp time.Time
}

func (e WildInputDiscardedEvent) EventType() EventType { return EventTypeWildInputDiscarded }
func (e WildInputDiscardedEvent) Timestamp() time.Time { return e.timestamp }

// DeckRebuiltEvent is published when an exhausted deck is replaced mid-round
type DeckRebuiltEvent struct {
	Round     int
	Rebuilds  int
	timestamp time.Time
}

func (e DeckRebuiltEvent) EventType() EventType { return EventTypeDeckRebuilt }
func (e DeckRebuiltEvent) Timestamp() time.Time { return e.timestamp }

// RoundSettledEvent is published once per round when the payout is applied
type RoundSettledEvent struct {
	Round       int
	Settlement  Settlement
	PlayerCards []deck.Card
	DealerCards []deck.Card
	timestamp   time.Time
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }
func (e RoundSettledEvent) Timestamp() time.Time { return e.timestamp }

// SessionResetEvent is published when the balance is restored by a restart
type SessionResetEvent struct {
	Balance   int
	timestamp time.Time
}

func (e SessionResetEvent) EventType() EventType { return EventTypeSessionReset }
func (e SessionResetEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber
type EventSubscriberFunc func(event GameEvent)

func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously in subscription order
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
