package tui

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/piblackjack/internal/game"
)

type fakeCommander struct {
	sent []game.Command
	err  error
}

func (f *fakeCommander) Enqueue(cmd game.Command) <-chan error {
	f.sent = append(f.sent, cmd)
	result := make(chan error, 1)
	result <- f.err
	return result
}

func newTestModel(t *testing.T) (*Model, *fakeCommander, *EventFeed) {
	t.Helper()
	DisableColor()

	commander := &fakeCommander{}
	feed := NewEventFeed(8)
	m := New(Config{
		Commander: commander,
		Snapshots: make(chan game.Snapshot),
		Events:    feed,
		Logger:    log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, commander, feed
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the command it returns, feeding the result
// back into the model.
func press(t *testing.T, m *Model, msg tea.KeyMsg) tea.Msg {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	result := cmd()
	m.Update(result)
	return result
}

func TestKeyBindingsByPhase(t *testing.T) {
	tests := []struct {
		name string
		snap game.Snapshot
		key  tea.KeyMsg
		want game.Command
	}{
		{"raise bet", game.Snapshot{Phase: game.PhaseBetting}, tea.KeyMsg{Type: tea.KeyUp}, game.Command{Kind: game.CommandAdjustBet, Amount: 1}},
		{"lower bet", game.Snapshot{Phase: game.PhaseBetting}, runes("j"), game.Command{Kind: game.CommandAdjustBet, Amount: -1}},
		{"raise bet by ten", game.Snapshot{Phase: game.PhaseBetting}, runes("+"), game.Command{Kind: game.CommandAdjustBet, Amount: 10}},
		{"confirm current bet", game.Snapshot{Phase: game.PhaseBetting, Bet: 15}, tea.KeyMsg{Type: tea.KeyEnter}, game.Command{Kind: game.CommandConfirmBet, Amount: 15}},
		{"all in", game.Snapshot{Phase: game.PhaseBetting}, runes("a"), game.Command{Kind: game.CommandAllIn}},
		{"hit", game.Snapshot{Phase: game.PhaseIdle, CanHit: true}, runes("h"), game.Command{Kind: game.CommandHit}},
		{"stand", game.Snapshot{Phase: game.PhaseIdle, CanStand: true}, runes("s"), game.Command{Kind: game.CommandStand}},
		{"wild digit", game.Snapshot{Phase: game.PhaseIdle, WildInputRequired: true}, runes("7"), game.Command{Kind: game.CommandEnterWildDigit, Digit: "7"}},
		{"wild backspace", game.Snapshot{Phase: game.PhaseIdle, WildInputRequired: true}, tea.KeyMsg{Type: tea.KeyBackspace}, game.Command{Kind: game.CommandBackspaceWildInput}},
		{"wild submit", game.Snapshot{Phase: game.PhaseIdle, WildInputRequired: true}, tea.KeyMsg{Type: tea.KeyEnter}, game.Command{Kind: game.CommandSubmitWildInput}},
		{"next round", game.Snapshot{Phase: game.PhaseRoundEnd}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, game.Command{Kind: game.CommandAdvanceRound}},
		{"restart after loss", game.Snapshot{Phase: game.PhaseGameOver}, runes("r"), game.Command{Kind: game.CommandRestartGame}},
		{"restart after win", game.Snapshot{Phase: game.PhaseGameWon}, runes("r"), game.Command{Kind: game.CommandRestartGame}},
		{"request restart while betting", game.Snapshot{Phase: game.PhaseBetting}, runes("m"), game.Command{Kind: game.CommandRequestRestart}},
		{"request restart mid round", game.Snapshot{Phase: game.PhaseDealerTurn}, runes("m"), game.Command{Kind: game.CommandRequestRestart}},
		{"confirm restart", game.Snapshot{Phase: game.PhaseIdle, RestartPending: true}, runes("y"), game.Command{Kind: game.CommandConfirmRestart}},
		{"cancel restart", game.Snapshot{Phase: game.PhaseRoundEnd, RestartPending: true}, runes("n"), game.Command{Kind: game.CommandCancelRestart}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, commander, _ := newTestModel(t)
			m.Update(snapshotMsg(tt.snap))

			press(t, m, tt.key)
			require.Len(t, commander.sent, 1)
			assert.Equal(t, tt.want, commander.sent[0])
		})
	}
}

func TestKeysIgnoredOutsideTheirPhase(t *testing.T) {
	tests := []struct {
		name string
		snap game.Snapshot
		key  tea.KeyMsg
	}{
		{"hit while betting", game.Snapshot{Phase: game.PhaseBetting}, runes("h")},
		{"bet after confirmation", game.Snapshot{Phase: game.PhaseBetting, BetConfirmed: true}, tea.KeyMsg{Type: tea.KeyUp}},
		{"hit while a wild is pending", game.Snapshot{Phase: game.PhaseIdle, WildInputRequired: true}, runes("h")},
		{"digit without a wild", game.Snapshot{Phase: game.PhaseIdle}, runes("4")},
		{"anything while dealing", game.Snapshot{Phase: game.PhaseDealing}, runes("s")},
		{"restart mid round", game.Snapshot{Phase: game.PhaseIdle}, runes("r")},
		{"request restart after game over", game.Snapshot{Phase: game.PhaseGameOver}, runes("m")},
		{"hit while restart pending", game.Snapshot{Phase: game.PhaseIdle, CanHit: true, RestartPending: true}, runes("h")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, commander, _ := newTestModel(t)
			m.Update(snapshotMsg(tt.snap))

			assert.Nil(t, press(t, m, tt.key))
			assert.Empty(t, commander.sent)
		})
	}
}

func TestQuit(t *testing.T) {
	m, commander, _ := newTestModel(t)
	m.Update(snapshotMsg(game.Snapshot{Phase: game.PhaseIdle, WildInputRequired: true}))

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, commander.sent)
	assert.Empty(t, m.View())
}

func TestRejectedCommandShowsError(t *testing.T) {
	m, commander, _ := newTestModel(t)
	commander.err = errors.New("command not accepted in current phase: hit")
	m.Update(snapshotMsg(game.Snapshot{Phase: game.PhaseIdle, CanHit: true}))

	press(t, m, runes("h"))
	assert.Contains(t, m.View(), "command not accepted")

	commander.err = nil
	press(t, m, runes("s"))
	assert.NotContains(t, m.View(), "command not accepted")
}

func TestViewRendersSnapshot(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())

	value := 3.5
	m.Update(snapshotMsg(game.Snapshot{
		Round:             3,
		Phase:             game.PhaseIdle,
		Balance:           80,
		Bet:               20,
		BetConfirmed:      true,
		WinningTarget:     314,
		Player:            []game.CardView{{Rank: "10", Suit: "♥", Red: true}, {Rank: "PI", Wild: true, Value: &value}},
		Dealer:            []game.CardView{{Rank: "K", Suit: "♠"}, {FaceDown: true}},
		PlayerTotal:       13.5,
		DealerTotal:       3.14159,
		WildInput:         "",
		WildInputRequired: false,
		CanHit:            true,
		CanStand:          true,
		DeckRemaining:     47,
	}))

	view := m.View()
	assert.Contains(t, view, "Round 3")
	assert.Contains(t, view, "Balance: 80")
	assert.Contains(t, view, "Target:  314")
	assert.Contains(t, view, "10♥")
	assert.Contains(t, view, "PI=3.50")
	assert.Contains(t, view, "K♠ ??")
	assert.Contains(t, view, "(13.50)")
	assert.Contains(t, view, "(3.14)")
	assert.Contains(t, view, "Hit or stand?")
	assert.Contains(t, view, "Deck: 47 cards")
}

func TestViewWildPromptAndResult(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(snapshotMsg(game.Snapshot{Phase: game.PhaseIdle, WildInputRequired: true, WildInput: "12"}))
	assert.Contains(t, m.View(), "needs a value: 12_")

	m.Update(snapshotMsg(game.Snapshot{
		Phase:      game.PhaseRoundEnd,
		Result:     "Dealer Busts! Player Wins!",
		ShowResult: true,
		Settlement: &game.Settlement{Outcome: game.OutcomeDealerBust, Bet: 10, Payout: 20},
	}))
	assert.Contains(t, m.View(), "Dealer Busts! Player Wins! (+10)")

	m.Update(snapshotMsg(game.Snapshot{Phase: game.PhaseIdle, RestartPending: true}))
	assert.Contains(t, m.View(), "Restart the game?")
}

func TestEventsAppendToLog(t *testing.T) {
	m, _, feed := newTestModel(t)
	cmd := m.Init()
	require.NotNil(t, cmd)

	feed.OnEvent(game.BetConfirmedEvent{Bet: 10, BalanceAfter: 90})
	msg := m.waitForEvent()()
	_, next := m.Update(msg)
	assert.NotNil(t, next)

	// Phase changes are not shown by default
	feed.OnEvent(game.PhaseChangeEvent{From: game.PhaseBetting, To: game.PhaseDealing})
	m.Update(m.waitForEvent()())

	assert.Equal(t, []string{"Player bets 10 (balance 90)"}, m.Log())
}

func TestEventFeedDropsWhenFull(t *testing.T) {
	feed := NewEventFeed(1)
	feed.OnEvent(game.SessionResetEvent{Balance: 100})
	feed.OnEvent(game.SessionResetEvent{Balance: 200})

	event := <-feed.Events()
	assert.Equal(t, 100, event.(game.SessionResetEvent).Balance)
	assert.Empty(t, feed.Events())
}

func TestSnapshotsClosedQuits(t *testing.T) {
	snapshots := make(chan game.Snapshot)
	m := New(Config{
		Commander: &fakeCommander{},
		Snapshots: snapshots,
		Logger:    log.NewWithOptions(io.Discard, log.Options{}),
	})
	close(snapshots)

	msg := m.waitForSnapshot()()
	assert.IsType(t, snapshotsClosedMsg{}, msg)
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
