package game

import (
	"time"

	"github.com/lox/piblackjack/internal/deck"
)

// CardView is a card as the player may see it. Face-down cards carry no
// rank, suit or value.
type CardView struct {
	Rank     string   `json:"rank,omitempty"`
	Suit     string   `json:"suit,omitempty"`
	Red      bool     `json:"red,omitempty"`
	Wild     bool     `json:"wild,omitempty"`
	FaceDown bool     `json:"faceDown,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// Label is the short text drawn on the card face.
func (v CardView) Label() string {
	if v.FaceDown {
		return "??"
	}
	return v.Rank + v.Suit
}

// ViewCard converts a card to its visible form.
func ViewCard(c deck.Card) CardView {
	if c.FaceDown {
		return CardView{FaceDown: true}
	}
	view := CardView{
		Rank: c.Rank.String(),
		Suit: c.Suit.String(),
		Red:  c.IsRed(),
		Wild: c.IsWild(),
	}
	if v, ok := c.Value.Get(); ok {
		view.Value = &v
	}
	return view
}

func viewCards(cards []deck.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = ViewCard(c)
	}
	return views
}

// PlacementView is the card currently in flight.
type PlacementView struct {
	Seat     Seat          `json:"seat"`
	Card     CardView      `json:"card"`
	Position Point         `json:"position"`
	Progress float64       `json:"progress"`
	Duration time.Duration `json:"duration"`
}

// Snapshot is a read-only copy of everything a presentation needs to draw
// one frame.
type Snapshot struct {
	Version       uint64 `json:"version"`
	Frame         uint64 `json:"frame"`
	Round         int    `json:"round"`
	Phase         Phase  `json:"phase"`
	Balance       int    `json:"balance"`
	Bet           int    `json:"bet"`
	BetConfirmed  bool   `json:"betConfirmed"`
	WinningTarget int    `json:"winningTarget"`

	Player      []CardView `json:"player"`
	Dealer      []CardView `json:"dealer"`
	PlayerTotal float64    `json:"playerTotal"`
	DealerTotal float64    `json:"dealerTotal"`

	WildInput         string `json:"wildInput"`
	WildInputRequired bool   `json:"wildInputRequired"`
	CanHit            bool   `json:"canHit"`
	CanStand          bool   `json:"canStand"`

	InFlight *PlacementView `json:"inFlight,omitempty"`
	Queued   int            `json:"queued"`

	Result     string      `json:"result,omitempty"`
	ShowResult bool        `json:"showResult"`
	Settlement *Settlement `json:"settlement,omitempty"`

	RestartPending bool `json:"restartPending"`

	DeckRemaining int `json:"deckRemaining"`
	DeckRebuilds  int `json:"deckRebuilds"`
}

// Snapshot captures the session's current state.
func (s *Session) Snapshot() Snapshot {
	finished := s.phase == PhaseRoundEnd || s.phase.IsTerminal()
	awaiting := s.awaitingWild()

	snap := Snapshot{
		Version:           s.version,
		Frame:             s.frame,
		Round:             s.round,
		Phase:             s.phase,
		Balance:           s.balance,
		Bet:               s.bet,
		BetConfirmed:      s.betConfirmed,
		WinningTarget:     s.rules.WinningTarget,
		Player:            viewCards(s.player.cards),
		Dealer:            viewCards(s.dealer.cards),
		PlayerTotal:       Total(s.player, false),
		DealerTotal:       Total(s.dealer, finished),
		WildInput:         s.wildInput.String(),
		WildInputRequired: awaiting,
		CanHit:            s.phase == PhaseIdle && !awaiting && !s.restartPending,
		CanStand:          s.phase == PhaseIdle && !awaiting && !s.restartPending,
		Queued:            s.seq.Queued(),
		RestartPending:    s.restartPending,
		DeckRemaining:     s.deck.Remaining(),
		DeckRebuilds:      s.deckRebuilds,
	}

	if p := s.seq.Active(); p != nil {
		snap.InFlight = &PlacementView{
			Seat:     p.Target.Seat(),
			Card:     ViewCard(p.Card),
			Position: p.Position(),
			Progress: p.Progress(),
			Duration: p.Duration,
		}
	}

	if s.settlement != nil {
		st := *s.settlement
		snap.Settlement = &st
		snap.Result = st.Outcome.Text()
		switch s.phase {
		case PhaseRoundEnd:
			snap.ShowResult = true
		case PhaseGameWon:
			snap.ShowResult = s.frame < s.resultUntil
		}
	}
	return snap
}
