// Package history records every settled round of a session and writes
// the record as JSON. It is an audit log; sessions are never restored
// from it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lox/piblackjack/internal/deck"
	"github.com/lox/piblackjack/internal/fileutil"
	"github.com/lox/piblackjack/internal/game"
	"github.com/lox/piblackjack/internal/gameid"
)

// WildValue is a wild card assignment made during a round
type WildValue struct {
	Seat      game.Seat `json:"seat"`
	Index     int       `json:"index"`
	Value     float64   `json:"value"`
	Automatic bool      `json:"automatic"`
}

// Round is one settled round
type Round struct {
	Round        int             `json:"round"`
	SettledAt    time.Time       `json:"settledAt"`
	PlayerCards  []string        `json:"playerCards"`
	DealerCards  []string        `json:"dealerCards"`
	Wild         []WildValue     `json:"wild,omitempty"`
	DeckRebuilds int             `json:"deckRebuilds,omitempty"`
	Settlement   game.Settlement `json:"settlement"`
}

// History is the file written by Recorder.WriteFile
type History struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"startedAt"`
	Restarts  int       `json:"restarts"`
	Rounds    []Round   `json:"rounds"`
}

// Recorder collects rounds from a session's event bus. It is safe to read
// from another goroutine while the session publishes.
type Recorder struct {
	mu       sync.Mutex
	history  History
	wild     []WildValue
	rebuilds int
}

// NewRecorder creates a recorder for a session shuffled from seed. The
// history gets a fresh time-sortable ID.
func NewRecorder(seed int64, startedAt time.Time) *Recorder {
	return &Recorder{history: History{
		ID:        gameid.Generate(startedAt),
		Seed:      seed,
		StartedAt: startedAt,
		Rounds:    []Round{},
	}}
}

// OnEvent implements game.EventSubscriber
func (r *Recorder) OnEvent(event game.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := event.(type) {
	case game.WildAssignedEvent:
		r.wild = append(r.wild, WildValue{Seat: e.Seat, Index: e.Index, Value: e.Value, Automatic: e.Automatic})
	case game.DeckRebuiltEvent:
		r.rebuilds++
	case game.RoundSettledEvent:
		r.history.Rounds = append(r.history.Rounds, Round{
			Round:        e.Round,
			SettledAt:    e.Timestamp(),
			PlayerCards:  cardStrings(e.PlayerCards),
			DealerCards:  cardStrings(e.DealerCards),
			Wild:         r.wild,
			DeckRebuilds: r.rebuilds,
			Settlement:   e.Settlement,
		})
		r.wild = nil
		r.rebuilds = 0
	case game.SessionResetEvent:
		r.history.Restarts++
		r.wild = nil
		r.rebuilds = 0
	}
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// Rounds returns the rounds recorded so far
func (r *Recorder) Rounds() []Round {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Round(nil), r.history.Rounds...)
}

// WriteFile writes the history to path atomically
func (r *Recorder) WriteFile(path string) error {
	r.mu.Lock()
	h := r.history
	h.Rounds = append([]Round(nil), r.history.Rounds...)
	r.mu.Unlock()

	if err := fileutil.WriteJSONAtomic(path, h, 0o644); err != nil {
		return fmt.Errorf("write round history: %w", err)
	}
	return nil
}

// ReadFile loads a history written by WriteFile
func ReadFile(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read round history: %w", err)
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode round history: %w", err)
	}
	return &h, nil
}
