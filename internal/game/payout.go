package game

import (
	"fmt"
	"math"
)

// totalEpsilon absorbs float rounding when totals mixing π and a
// threshold-seeking wild value are compared.
const totalEpsilon = 1e-9

// IsBust reports whether total is strictly greater than Threshold.
func IsBust(total float64) bool {
	return total-Threshold > totalEpsilon
}

func sameTotal(a, b float64) bool {
	return math.Abs(a-b) <= totalEpsilon
}

// Outcome is the result of a settled round
type Outcome int

const (
	OutcomePlayerBust Outcome = iota
	OutcomeDealerBust
	OutcomePlayerWins
	OutcomeDealerWins
	OutcomePush
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayerBust:
		return "player_bust"
	case OutcomeDealerBust:
		return "dealer_bust"
	case OutcomePlayerWins:
		return "player_wins"
	case OutcomeDealerWins:
		return "dealer_wins"
	case OutcomePush:
		return "push"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	for c := OutcomePlayerBust; c <= OutcomePush; c++ {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Text is the result line shown to the player.
func (o Outcome) Text() string {
	switch o {
	case OutcomePlayerBust:
		return "Player Busts! Dealer Wins!"
	case OutcomeDealerBust:
		return "Dealer Busts! Player Wins!"
	case OutcomePlayerWins:
		return "Player Wins!"
	case OutcomeDealerWins:
		return "Dealer Wins!"
	default:
		return "Push! It's a Tie!"
	}
}

// Multiplier is the number of bets returned to the player.
func (o Outcome) Multiplier() int {
	switch o {
	case OutcomeDealerBust, OutcomePlayerWins:
		return 2
	case OutcomePush:
		return 1
	default:
		return 0
	}
}

// Settlement is the payout decision for one round.
type Settlement struct {
	Outcome      Outcome `json:"outcome"`
	PlayerTotal  float64 `json:"playerTotal"`
	DealerTotal  float64 `json:"dealerTotal"`
	Bet          int     `json:"bet"`
	Multiplier   int     `json:"multiplier"`
	Payout       int     `json:"payout"`
	BalanceAfter int     `json:"balanceAfter"`
}

// Net is the coin change of the round including the debited bet.
func (s Settlement) Net() int {
	return s.Payout - s.Bet
}

// Settle applies the payout table. Rows are checked in order and exactly
// one applies.
func Settle(playerTotal, dealerTotal float64, bet int) Settlement {
	var outcome Outcome
	switch {
	case IsBust(playerTotal):
		outcome = OutcomePlayerBust
	case IsBust(dealerTotal):
		outcome = OutcomeDealerBust
	case sameTotal(playerTotal, dealerTotal):
		outcome = OutcomePush
	case playerTotal > dealerTotal:
		outcome = OutcomePlayerWins
	default:
		outcome = OutcomeDealerWins
	}

	m := outcome.Multiplier()
	return Settlement{
		Outcome:     outcome,
		PlayerTotal: playerTotal,
		DealerTotal: dealerTotal,
		Bet:         bet,
		Multiplier:  m,
		Payout:      bet * m,
	}
}
