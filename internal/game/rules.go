package game

import (
	"math"
	"time"
)

// Threshold is the bust boundary. A hand whose settled total is strictly
// greater than Threshold is bust.
const Threshold = 7 * math.Pi

// DealerStand is the total at which the dealer stops drawing.
const DealerStand = 17.0

// Rules holds per-session parameters.
type Rules struct {
	StartingCoins int
	WinningTarget int
	DealDuration  time.Duration // flight time of one card placement
	ChipDuration  time.Duration // bet debit animation before the deal starts
}

// DefaultRules returns the standard table parameters.
func DefaultRules() Rules {
	return Rules{
		StartingCoins: 100,
		WinningTarget: 314,
		DealDuration:  500 * time.Millisecond,
		ChipDuration:  250 * time.Millisecond,
	}
}
