package simulator

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/piblackjack/internal/game"
	"github.com/lox/piblackjack/internal/randutil"
	"github.com/lox/piblackjack/internal/statistics"
)

// maxFramesPerRound bounds a single round; a round that needs more frames
// than this is stuck.
const maxFramesPerRound = 100_000

// Config holds configuration for running simulations
type Config struct {
	Sessions  int           // Independent sessions to play
	MaxRounds int           // Rounds per session unless it ends first
	Seed      int64         // Parent seed; each session derives its own
	Workers   int           // Sessions played in parallel
	Frame     time.Duration // Simulated frame length
	Rules     game.Rules
	Strategy  Strategy
	Logger    *log.Logger
}

// Strategy decides the player's side of a round
type Strategy interface {
	Bet(balance int) int
	WildValue(partialTotal float64) int
	Hit(total float64) bool
}

// ThresholdStrategy bets a flat amount, hits below StandOn and sets wild
// cards to the largest whole value that does not bust.
type ThresholdStrategy struct {
	FlatBet int
	StandOn float64
}

func (s ThresholdStrategy) Bet(balance int) int {
	return min(s.FlatBet, balance)
}

func (s ThresholdStrategy) WildValue(partialTotal float64) int {
	return max(int(math.Floor(game.Threshold-partialTotal)), 1)
}

func (s ThresholdStrategy) Hit(total float64) bool {
	return total < s.StandOn
}

// Result is the aggregate of a simulation run
type Result struct {
	Stats      *statistics.Statistics
	Sessions   int
	GamesWon   int
	GamesLost  int
	Unfinished int // Sessions that reached MaxRounds
	Frames     int64
}

type sessionResult struct {
	stats  statistics.Statistics
	phase  game.Phase
	frames int64
}

// Simulator runs PI blackjack sessions without a display
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Frame <= 0 {
		config.Frame = time.Second / 60
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = 100
	}
	if config.Rules == (game.Rules{}) {
		config.Rules = game.DefaultRules()
	}
	if config.Strategy == nil {
		config.Strategy = ThresholdStrategy{FlatBet: 10, StandOn: 17}
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	config.Logger = config.Logger.WithPrefix("simulator")
	return &Simulator{config: config}
}

// Run plays every session and returns the merged results. Sessions run on
// up to Workers goroutines; results are merged in session order so a seed
// always produces the same Result.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	results := make([]sessionResult, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range s.config.Sessions {
		seed := randutil.Derive(s.config.Seed, i)
		g.Go(func() error {
			res, err := s.playSession(ctx, seed)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i, seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Stats: &statistics.Statistics{}, Sessions: s.config.Sessions}
	for _, res := range results {
		out.Stats.Merge(&res.stats)
		out.Frames += res.frames
		switch res.phase {
		case game.PhaseGameWon:
			out.GamesWon++
		case game.PhaseGameOver:
			out.GamesLost++
		default:
			out.Unfinished++
		}
	}

	if err := out.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	s.config.Logger.Info("Simulation complete",
		"sessions", out.Sessions, "rounds", out.Stats.Rounds, "won", out.GamesWon, "lost", out.GamesLost)
	return out, nil
}

// playSession plays rounds until the session ends or MaxRounds is reached
func (s *Simulator) playSession(ctx context.Context, seed int64) (sessionResult, error) {
	collector := statistics.NewCollector()
	session := game.NewSession(
		game.WithRules(s.config.Rules),
		game.WithSeed(seed),
		game.WithLogger(s.config.Logger),
	)
	session.Subscribe(collector)

	var frames int64
	for round := 0; round < s.config.MaxRounds && !session.Phase().IsTerminal(); round++ {
		if err := ctx.Err(); err != nil {
			return sessionResult{}, err
		}
		n, err := s.playRound(session)
		frames += n
		if err != nil {
			return sessionResult{}, err
		}
	}

	return sessionResult{stats: collector.Statistics(), phase: session.Phase(), frames: frames}, nil
}

// playRound drives one round from betting through to its result
func (s *Simulator) playRound(session *game.Session) (int64, error) {
	strategy := s.config.Strategy
	if err := session.ConfirmBet(strategy.Bet(session.Balance())); err != nil {
		return 0, err
	}

	var frames int64
	for frames < maxFramesPerRound {
		switch session.Phase() {
		case game.PhaseRoundEnd:
			return frames, session.AdvanceRound()
		case game.PhaseGameOver, game.PhaseGameWon:
			return frames, nil
		case game.PhaseIdle:
			if err := s.playTurn(session); err != nil {
				return frames, err
			}
		default:
			session.Tick(s.config.Frame)
			frames++
		}
	}
	return frames, fmt.Errorf("round %d stuck in %s after %d frames", session.Round(), session.Phase(), frames)
}

func (s *Simulator) playTurn(session *game.Session) error {
	player := session.Player()
	if game.RequiresWildInput(player) {
		v := s.config.Strategy.WildValue(game.Total(player, false))
		return session.SubmitWildValue(strconv.Itoa(v))
	}
	if s.config.Strategy.Hit(game.SettledTotal(player, false)) {
		return session.Hit()
	}
	return session.Stand()
}

// PrintSummary prints a summary of simulation results
func PrintSummary(w io.Writer, result *Result) {
	stats := result.Stats
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== SESSIONS ===\n")
	fmt.Fprintf(w, "Sessions: %d (won %d, lost %d, unfinished %d)\n",
		result.Sessions, result.GamesWon, result.GamesLost, result.Unfinished)
	fmt.Fprintf(w, "Rounds played: %d (%d frames simulated)\n", stats.Rounds, result.Frames)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f coins/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f coins/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f coins\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] coins/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	for o := game.OutcomePlayerBust; o <= game.OutcomePush; o++ {
		count := stats.Count(o)
		pct := 0.0
		if stats.Rounds > 0 {
			pct = float64(count) / float64(stats.Rounds) * 100
		}
		fmt.Fprintf(w, "%-12s %6d (%.1f%%)\n", o, count, pct)
	}
	fmt.Fprintf(w, "Win rate: %.1f%%, wagered %d, net %+d\n", stats.WinRate()*100, stats.Wagered, stats.AllNet)
	fmt.Fprintf(w, "Largest win %d, largest loss %d, wild cards seen %d\n", stats.MaxWin, stats.MaxLoss, stats.WildSeen)
}
