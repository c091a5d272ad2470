package statistics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lox/piblackjack/internal/deck"
	"github.com/lox/piblackjack/internal/game"
)

// RoundResult represents the outcome of a single settled round
type RoundResult struct {
	Net         int          // Coins won/lost this round, after the bet
	Bet         int          // Coins wagered
	Outcome     game.Outcome // Which settlement row applied
	PlayerTotal float64
	DealerTotal float64
	WildCards   int // Wild cards dealt to either hand
}

// ResultFromEvent converts a settlement event into a round result
func ResultFromEvent(e game.RoundSettledEvent) RoundResult {
	return RoundResult{
		Net:         e.Settlement.Net(),
		Bet:         e.Settlement.Bet,
		Outcome:     e.Settlement.Outcome,
		PlayerTotal: e.Settlement.PlayerTotal,
		DealerTotal: e.Settlement.DealerTotal,
		WildCards:   countWild(e.PlayerCards) + countWild(e.DealerCards),
	}
}

func countWild(cards []deck.Card) int {
	n := 0
	for _, c := range cards {
		if c.IsWild() {
			n++
		}
	}
	return n
}

// OutcomeStats tracks statistics for rounds that settled the same way
type OutcomeStats struct {
	Rounds int
	Net    int
}

// Statistics tracks per-round results of one or more sessions
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	Wagered  int // Total coins bet
	AllNet   int // Total net for ledger check
	MaxWin   int
	MaxLoss  int
	WildSeen int

	// Indexed by game.Outcome
	Outcomes [5]OutcomeStats
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := float64(result.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.Wagered += result.Bet
	s.AllNet += result.Net
	s.WildSeen += result.WildCards
	if result.Net > s.MaxWin {
		s.MaxWin = result.Net
	}
	if -result.Net > s.MaxLoss {
		s.MaxLoss = -result.Net
	}

	if o := int(result.Outcome); o >= 0 && o < len(s.Outcomes) {
		s.Outcomes[o].Rounds++
		s.Outcomes[o].Net += result.Net
	}
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wagered += other.Wagered
	s.AllNet += other.AllNet
	s.WildSeen += other.WildSeen
	s.MaxWin = max(s.MaxWin, other.MaxWin)
	s.MaxLoss = max(s.MaxLoss, other.MaxLoss)
	for i := range s.Outcomes {
		s.Outcomes[i].Rounds += other.Outcomes[i].Rounds
		s.Outcomes[i].Net += other.Outcomes[i].Net
	}
}

// Count returns how many rounds settled with outcome
func (s *Statistics) Count(outcome game.Outcome) int {
	return s.Outcomes[outcome].Rounds
}

// Wins returns rounds the player won, including dealer busts
func (s *Statistics) Wins() int {
	return s.Count(game.OutcomePlayerWins) + s.Count(game.OutcomeDealerBust)
}

// Losses returns rounds the player lost, including player busts
func (s *Statistics) Losses() int {
	return s.Count(game.OutcomeDealerWins) + s.Count(game.OutcomePlayerBust)
}

// Pushes returns tied rounds
func (s *Statistics) Pushes() int {
	return s.Count(game.OutcomePush)
}

// WinRate returns the fraction of rounds won
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins()) / float64(s.Rounds)
}

// Mean returns the arithmetic mean of all results in coins per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that the per-outcome nets add up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	sum := 0
	for _, o := range s.Outcomes {
		sum += o.Net
	}
	return sum == s.AllNet && math.Abs(float64(s.AllNet)-s.SumNet) <= 1e-6
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllNet=%d, SumNet=%.2f", s.AllNet, s.SumNet)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	total := 0
	for _, o := range s.Outcomes {
		total += o.Rounds
	}
	if total != s.Rounds {
		return fmt.Errorf("outcome rounds total (%d) does not match total rounds (%d)", total, s.Rounds)
	}

	if s.Count(game.OutcomePush) > 0 && s.Outcomes[game.OutcomePush].Net != 0 {
		return fmt.Errorf("pushes netted %d coins", s.Outcomes[game.OutcomePush].Net)
	}

	return nil
}

// Collector aggregates settled rounds from a session's event bus
type Collector struct {
	mu    sync.Mutex
	stats Statistics
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// OnEvent implements game.EventSubscriber
func (c *Collector) OnEvent(event game.GameEvent) {
	settled, ok := event.(game.RoundSettledEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Add(ResultFromEvent(settled))
}

// Statistics returns a copy of the statistics collected so far
func (c *Collector) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.stats
	out.Values = append([]float64(nil), c.stats.Values...)
	return out
}
