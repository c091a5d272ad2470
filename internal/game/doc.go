// Package game implements the round engine for PI blackjack, a blackjack
// variant with a bust threshold of 7π and two wild PI cards whose value is
// chosen when they are played.
//
// The main type is Session, which owns the coin balance across rounds and
// drives a round through its phases: betting, dealing, the player's turn,
// the dealer's turn and settlement.
//
// # Time
//
// A Session never blocks. Card deals are Placements queued on a Sequencer
// and the caller advances time with Tick. A dealt card only becomes part of
// a hand when its Placement commits, so totals and bust checks never see a
// card that is still in flight.
//
//	s := game.NewSession(game.WithSeed(42))
//	_ = s.ConfirmBet(10)
//	for s.Phase() != game.PhaseIdle {
//	    s.Tick(16 * time.Millisecond)
//	}
//	_ = s.Stand()
//
// # Deterministic Testing
//
// WithSeed fixes the shuffle. WithDeckSource replaces deck construction
// entirely, which together with deck.Stacked scripts every card of a round.
//
// # Architecture
//
// Session delegates to small pure components:
//   - Hand / Total / RequiresWildInput: hand contents and totals
//   - AutoAssignDealerWilds / ParseWildInput: wild value policy
//   - Sequencer: FIFO card placements, one in flight at a time
//   - Settle: the payout decision table
package game
