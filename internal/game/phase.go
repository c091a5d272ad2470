package game

import "fmt"

// Phase is the round state machine's current state
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhaseIdle
	PhaseDealerTurn
	PhaseRoundEnd
	PhaseGameOver
	PhaseGameWon
)

var phaseNames = map[Phase]string{
	PhaseBetting:    "betting",
	PhaseDealing:    "dealing",
	PhaseIdle:       "idle",
	PhaseDealerTurn: "dealer_turn",
	PhaseRoundEnd:   "round_end",
	PhaseGameOver:   "game_over",
	PhaseGameWon:    "game_won",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// IsTerminal reports whether the phase ends the session until a restart
func (p Phase) IsTerminal() bool {
	return p == PhaseGameOver || p == PhaseGameWon
}
