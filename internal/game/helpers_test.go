package game

import (
	rand "math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lox/piblackjack/internal/deck"
)

const frame = 50 * time.Millisecond

// cards builds spade cards of the given ranks, with deck.Wild as a PI card
func cards(ranks ...deck.Rank) []deck.Card {
	out := make([]deck.Card, len(ranks))
	for i, r := range ranks {
		if r == deck.Wild {
			out[i] = deck.NewWild()
			continue
		}
		out[i] = deck.NewCard(deck.Spades, r)
	}
	return out
}

// handOf builds a hand with cards already committed
func handOf(seat Seat, cs ...deck.Card) *Hand {
	h := NewHand(seat)
	for _, c := range cs {
		h.commit(c)
	}
	return h
}

// stackedDecks returns each stack in turn, then shuffled decks
func stackedDecks(stacks ...[]deck.Card) DeckSource {
	i := 0
	return func(rng *rand.Rand) *deck.Deck {
		if i < len(stacks) {
			d := deck.Stacked(stacks[i]...)
			i++
			return d
		}
		return deck.New(rng)
	}
}

func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	opts = append([]SessionOption{WithSeed(42)}, opts...)
	s := NewSession(opts...)
	s.Subscribe(rec)
	return s, rec
}

func tickUntil(t *testing.T, s *Session, done func() bool) {
	t.Helper()
	for range 1000 {
		if done() {
			return
		}
		s.Tick(frame)
	}
	t.Fatalf("session stuck in %s", s.Phase())
}

// dealRound confirms bet, unless it is zero, and ticks until the initial
// deal has settled
func dealRound(t *testing.T, s *Session, bet int) {
	t.Helper()
	if bet > 0 {
		require.NoError(t, s.ConfirmBet(bet))
	}
	tickUntil(t, s, func() bool {
		return s.Phase() != PhaseBetting && s.Phase() != PhaseDealing
	})
}

// finishDealer ticks until the dealer's turn is over
func finishDealer(t *testing.T, s *Session) {
	t.Helper()
	tickUntil(t, s, func() bool { return s.Phase() != PhaseDealerTurn })
}

func requireViolation(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected invariant violation")
		_, ok := r.(InvariantViolation)
		require.True(t, ok, "panic value %v is not an InvariantViolation", r)
	}()
	f()
}

type eventRecorder struct {
	events []GameEvent
}

func (r *eventRecorder) OnEvent(event GameEvent) {
	r.events = append(r.events, event)
}

func (r *eventRecorder) phases() []Phase {
	var out []Phase
	for _, e := range r.events {
		if pc, ok := e.(PhaseChangeEvent); ok {
			out = append(out, pc.To)
		}
	}
	return out
}

func eventsOf[T GameEvent](r *eventRecorder) []T {
	var out []T
	for _, e := range r.events {
		if ev, ok := e.(T); ok {
			out = append(out, ev)
		}
	}
	return out
}
