package simulator

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/piblackjack/internal/game"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	sim := New(Config{Sessions: 3})
	assert.Equal(t, 1, sim.config.Workers)
	assert.Equal(t, 100, sim.config.MaxRounds)
	assert.Equal(t, game.DefaultRules(), sim.config.Rules)
	assert.Equal(t, ThresholdStrategy{FlatBet: 10, StandOn: 17}, sim.config.Strategy)
}

func TestThresholdStrategy(t *testing.T) {
	t.Parallel()

	s := ThresholdStrategy{FlatBet: 25, StandOn: 17}
	assert.Equal(t, 25, s.Bet(100))
	assert.Equal(t, 7, s.Bet(7))
	assert.True(t, s.Hit(16.9))
	assert.False(t, s.Hit(17))
	assert.Equal(t, 11, s.WildValue(10))
	assert.Equal(t, 21, s.WildValue(0))
	assert.Equal(t, 1, s.WildValue(21.5))
}

func TestRunPlaysAllSessions(t *testing.T) {
	t.Parallel()

	sim := New(Config{
		Sessions:  8,
		MaxRounds: 30,
		Seed:      12345,
		Workers:   4,
		Logger:    quietLogger(),
	})

	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, result.Sessions)
	assert.Equal(t, 8, result.GamesWon+result.GamesLost+result.Unfinished)
	assert.Greater(t, result.Stats.Rounds, 0)
	assert.LessOrEqual(t, result.Stats.Rounds, 8*30)
	assert.Greater(t, result.Frames, int64(0))
	require.NoError(t, result.Stats.Validate())
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	run := func(workers int) *Result {
		result, err := New(Config{
			Sessions:  6,
			MaxRounds: 20,
			Seed:      777,
			Workers:   workers,
			Logger:    quietLogger(),
		}).Run(context.Background())
		require.NoError(t, err)
		return result
	}

	serial := run(1)
	parallel := run(3)
	assert.Equal(t, serial.Stats.Values, parallel.Stats.Values)
	assert.Equal(t, serial.Stats.Outcomes, parallel.Stats.Outcomes)
	assert.Equal(t, serial.Frames, parallel.Frames)
}

func TestRunAllInEndsSessions(t *testing.T) {
	t.Parallel()

	result, err := New(Config{
		Sessions:  4,
		MaxRounds: 1000,
		Seed:      5,
		Workers:   2,
		Strategy:  ThresholdStrategy{FlatBet: 1 << 30, StandOn: 17},
		Logger:    quietLogger(),
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Unfinished, "all-in play always reaches a terminal phase")
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Sessions: 2, Logger: quietLogger()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	result, err := New(Config{Sessions: 2, MaxRounds: 10, Seed: 1, Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, result)
	out := buf.String()
	assert.Contains(t, out, "Sessions: 2")
	assert.Contains(t, out, "player_bust")
	assert.Contains(t, out, "Win rate:")
}
