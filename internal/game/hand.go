package game

import (
	"fmt"

	"github.com/lox/piblackjack/internal/deck"
)

// Seat identifies who owns a hand.
type Seat int

const (
	SeatPlayer Seat = iota
	SeatDealer
)

func (s Seat) String() string {
	if s == SeatDealer {
		return "dealer"
	}
	return "player"
}

// MarshalText implements encoding.TextMarshaler
func (s Seat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Seat) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*s = SeatPlayer
	case "dealer":
		*s = SeatDealer
	default:
		return fmt.Errorf("unknown seat %q", text)
	}
	return nil
}

// Hand is the ordered set of committed cards a seat holds. Cards still in
// flight belong to their Placement until the Sequencer commits them.
type Hand struct {
	seat  Seat
	cards []deck.Card
}

// NewHand creates an empty hand for seat
func NewHand(seat Seat) *Hand {
	return &Hand{seat: seat, cards: make([]deck.Card, 0, 6)}
}

// Seat returns the owner of the hand
func (h *Hand) Seat() Seat {
	return h.seat
}

// Len returns the number of committed cards
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the committed cards in deal order
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Card returns the i-th committed card
func (h *Hand) Card(i int) deck.Card {
	return h.cards[i]
}

func (h *Hand) commit(c deck.Card) {
	h.cards = append(h.cards, c)
}

// Reveal turns every face-down card face up and returns how many flipped.
func (h *Hand) Reveal() int {
	n := 0
	for i := range h.cards {
		if h.cards[i].FaceDown {
			h.cards[i].FaceDown = false
			n++
		}
	}
	return n
}

// FirstPendingWild returns the index of the first visible unresolved wild
// card, or -1.
func (h *Hand) FirstPendingWild() int {
	for i, c := range h.cards {
		if c.IsWild() && c.NeedsValue() {
			return i
		}
	}
	return -1
}

// AssignWild resolves the wild card at index i. A card is assigned exactly
// once; assigning a non-wild or already resolved card panics.
func (h *Hand) AssignWild(i int, value float64) {
	if i < 0 || i >= len(h.cards) {
		violation("AssignWild", "index %d out of range for %s hand of %d", i, h.seat, len(h.cards))
	}
	c := &h.cards[i]
	if !c.IsWild() {
		violation("AssignWild", "%s card %s is not wild", h.seat, c)
	}
	if c.Value.IsResolved() {
		violation("AssignWild", "%s wild at %d already resolved to %s", h.seat, i, c.Value)
	}
	c.Value = deck.Resolved(value)
}

func (h *Hand) reset() {
	h.cards = h.cards[:0]
}
