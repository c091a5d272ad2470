package deck

import (
	"fmt"
	"math"
)

// Fixed card values. Face cards are worth pi and the ace a flat eleven.
const (
	FaceValue = math.Pi
	AceValue  = 11.0
)

// Suit represents a card suit
type Suit int

const (
	NoSuit Suit = iota
	Spades
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return ""
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	// Wild is the PI joker. Its value is chosen when it is played.
	Wild
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == Wild:
		return "PI"
	default:
		return "?"
	}
}

// Value is either a resolved numeric card value or unresolved. The zero
// Value is unresolved.
type Value struct {
	amount   float64
	resolved bool
}

// Resolved returns a resolved Value.
func Resolved(amount float64) Value {
	return Value{amount: amount, resolved: true}
}

// Unresolved returns a Value that has not been assigned yet.
func Unresolved() Value {
	return Value{}
}

// Get returns the amount and whether the value is resolved.
func (v Value) Get() (float64, bool) {
	return v.amount, v.resolved
}

// IsResolved reports whether the value has been assigned.
func (v Value) IsResolved() bool {
	return v.resolved
}

func (v Value) String() string {
	if !v.resolved {
		return "?"
	}
	if v.amount == math.Trunc(v.amount) {
		return fmt.Sprintf("%d", int64(v.amount))
	}
	return fmt.Sprintf("%.2f", v.amount)
}

// Card is a playing card. Rank and Suit never change; Value changes once for
// a wild card and FaceDown changes when the dealer reveals.
type Card struct {
	Rank     Rank
	Suit     Suit
	Value    Value
	FaceDown bool
}

// NewCard creates a ranked card carrying its fixed value
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, Value: Resolved(rankValue(rank))}
}

// NewWild creates an unresolved PI card
func NewWild() Card {
	return Card{Rank: Wild, Suit: NoSuit, Value: Unresolved()}
}

func rankValue(r Rank) float64 {
	switch {
	case r >= Two && r <= Ten:
		return float64(r)
	case r >= Jack && r <= King:
		return FaceValue
	default:
		return AceValue
	}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsWild reports whether the card is a PI joker
func (c Card) IsWild() bool {
	return c.Rank == Wild
}

// IsFaceCard returns true if the card is a face card (J, Q, K)
func (c Card) IsFaceCard() bool {
	return c.Rank >= Jack && c.Rank <= King
}

// NeedsValue reports whether the card is visible and still unresolved.
func (c Card) NeedsValue() bool {
	return !c.FaceDown && !c.Value.IsResolved()
}
