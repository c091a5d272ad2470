package game

import (
	"fmt"
	"strings"

	"github.com/lox/piblackjack/internal/deck"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowPlacements bool // Include queued placements and phase changes (for debugging)
}

// EventFormatter turns session events into one-line log entries
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format returns the text for event, or "" when the event is not shown
// under the formatter's options.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case BetConfirmedEvent:
		if e.AllIn {
			return fmt.Sprintf("Player goes all-in for %d (balance %d)", e.Bet, e.BalanceAfter)
		}
		return fmt.Sprintf("Player bets %d (balance %d)", e.Bet, e.BalanceAfter)
	case CardCommittedEvent:
		if e.Card.FaceDown {
			return fmt.Sprintf("%s receives a face-down card", capitalize(e.Seat.String()))
		}
		return fmt.Sprintf("%s receives %s", capitalize(e.Seat.String()), e.Card)
	case DealerRevealEvent:
		return fmt.Sprintf("Dealer reveals %s", FormatCards(e.Cards))
	case WildAssignedEvent:
		return fmt.Sprintf("%s sets PI to %s", capitalize(e.Seat.String()), FormatTotal(e.Value))
	case WildInputDiscardedEvent:
		return fmt.Sprintf("Ignored PI value %q", e.Input)
	case DeckRebuiltEvent:
		return "Deck exhausted, reshuffled a new deck"
	case RoundSettledEvent:
		st := e.Settlement
		return fmt.Sprintf("Round %d: %s %s vs %s, net %+d",
			e.Round, st.Outcome.Text(), FormatTotal(st.PlayerTotal), FormatTotal(st.DealerTotal), st.Net())
	case SessionResetEvent:
		return fmt.Sprintf("New game with %d coins", e.Balance)
	case PhaseChangeEvent:
		if ef.opts.ShowPlacements {
			return fmt.Sprintf("Phase %s -> %s", e.From, e.To)
		}
	case CardQueuedEvent:
		if ef.opts.ShowPlacements {
			return fmt.Sprintf("Queued card for %s (%d waiting)", e.Seat, e.Queued)
		}
	}
	return ""
}

// FormatCards formats cards separated by spaces, hiding face-down cards
func FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.FaceDown {
			parts[i] = "??"
			continue
		}
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// FormatTotal formats a hand total with two decimals
func FormatTotal(total float64) string {
	return fmt.Sprintf("%.2f", total)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
