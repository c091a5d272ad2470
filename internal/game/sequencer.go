package game

import (
	"time"

	"github.com/lox/piblackjack/internal/deck"
)

// Point is a position on the presentation surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp returns the point a fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Placement is one card travelling from the deck to a hand.
type Placement struct {
	Card     deck.Card
	Target   *Hand
	From     Point
	To       Point
	Duration time.Duration

	elapsed   time.Duration
	committed bool
}

// NewPlacement creates a placement for card. The face-down override is
// applied to the card immediately.
func NewPlacement(card deck.Card, target *Hand, from, to Point, duration time.Duration, faceDown bool) *Placement {
	card.FaceDown = faceDown
	return &Placement{
		Card:     card,
		Target:   target,
		From:     from,
		To:       to,
		Duration: duration,
	}
}

// Elapsed returns how long the placement has been in flight
func (p *Placement) Elapsed() time.Duration {
	return p.elapsed
}

// Progress returns the completed fraction in [0, 1]
func (p *Placement) Progress() float64 {
	if p.Duration <= 0 {
		return 1
	}
	f := float64(p.elapsed) / float64(p.Duration)
	if f > 1 {
		return 1
	}
	return f
}

// Position returns the interpolated position of the card
func (p *Placement) Position() Point {
	return p.From.Lerp(p.To, p.Progress())
}

// Done reports whether the placement reached its full duration
func (p *Placement) Done() bool {
	return p.elapsed >= p.Duration
}

// Step describes what one Advance did.
type Step struct {
	// Committed is the placement whose card joined its hand this tick.
	Committed *Placement
	// Drained is true when this tick committed the last queued placement.
	Drained bool
}

// Sequencer runs placements strictly one at a time in enqueue order.
type Sequencer struct {
	queue     []*Placement
	active    *Placement
	committed int
}

// Enqueue appends p to the queue
func (s *Sequencer) Enqueue(p *Placement) {
	s.queue = append(s.queue, p)
}

// Advance moves time forward by dt. When no placement is active the queue
// head is activated first. A placement that reaches its duration commits
// its card to the target hand and frees the active slot.
func (s *Sequencer) Advance(dt time.Duration) Step {
	if s.active == nil {
		if len(s.queue) == 0 {
			return Step{}
		}
		s.active = s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
	}

	p := s.active
	p.elapsed += dt
	if !p.Done() {
		return Step{}
	}

	if p.committed {
		violation("Sequencer.Advance", "placement of %s committed twice", p.Card)
	}
	p.committed = true
	p.Target.commit(p.Card)
	s.committed++
	s.active = nil

	return Step{Committed: p, Drained: len(s.queue) == 0}
}

// Active returns the placement in flight, if any
func (s *Sequencer) Active() *Placement {
	return s.active
}

// Queued returns the number of placements waiting behind the active one
func (s *Sequencer) Queued() int {
	return len(s.queue)
}

// Pending counts the placements, active or queued, that target h.
func (s *Sequencer) Pending(h *Hand) int {
	n := 0
	if s.active != nil && s.active.Target == h {
		n++
	}
	for _, p := range s.queue {
		if p.Target == h {
			n++
		}
	}
	return n
}

// Idle reports whether nothing is queued or in flight
func (s *Sequencer) Idle() bool {
	return s.active == nil && len(s.queue) == 0
}

// Committed returns how many placements have committed since the last Reset
func (s *Sequencer) Committed() int {
	return s.committed
}

// Reset drops every pending placement
func (s *Sequencer) Reset() {
	s.queue = nil
	s.active = nil
	s.committed = 0
}
