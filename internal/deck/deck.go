package deck

import (
	"errors"
	rand "math/rand/v2"
)

// Size is the number of cards in a freshly built deck: 52 ranked cards and
// two wild cards.
const Size = 54

// ErrDeckExhausted is returned by Draw when no cards remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered pool of cards. Cards are drawn from the tail.
type Deck struct {
	cards []Card
}

// New builds a fresh 54-card deck and shuffles it with rng.
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, Size)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	d.cards = append(d.cards, NewWild(), NewWild())

	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// Stacked returns a deck that deals the given cards in argument order.
func Stacked(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	for i, c := range cards {
		d.cards[len(cards)-1-i] = c
	}
	return d
}

// Draw removes and returns the last card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the undealt cards in deck order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
