// Package tui renders session snapshots in the terminal and turns key
// presses into session commands. It never touches the session directly:
// commands go through a Commander and state arrives as snapshots.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/piblackjack/internal/game"
)

const (
	sidebarWidth = 34
	maxLogLines  = 500
)

// Commander queues commands for the session
type Commander interface {
	Enqueue(cmd game.Command) <-chan error
}

type snapshotMsg game.Snapshot

type snapshotsClosedMsg struct{}

type eventMsg struct{ event game.GameEvent }

type commandResultMsg struct {
	cmd game.Command
	err error
}

// Model is the Bubble Tea model for a PI blackjack session
type Model struct {
	commander Commander
	snapshots <-chan game.Snapshot
	events    <-chan game.GameEvent
	logger    *log.Logger
	formatter *game.EventFormatter

	// UI components
	logViewport viewport.Model
	help        help.Model

	// State
	snap     game.Snapshot
	hasSnap  bool
	gameLog  []string
	lastErr  string
	quitting bool

	// Dimensions
	width  int
	height int
}

// Config wires a Model to its session
type Config struct {
	Commander Commander
	Snapshots <-chan game.Snapshot
	Events    *EventFeed // optional
	Logger    *log.Logger
}

// New creates a TUI model
func New(cfg Config) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	m := &Model{
		commander:   cfg.Commander,
		snapshots:   cfg.Snapshots,
		logger:      cfg.Logger.WithPrefix("tui"),
		formatter:   game.NewEventFormatter(game.FormattingOptions{}),
		logViewport: vp,
		help:        help.New(),
	}
	if cfg.Events != nil {
		m.events = cfg.Events.Events()
	}
	return m
}

// Init starts listening for snapshots and events
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForSnapshot()}
	if m.events != nil {
		cmds = append(cmds, m.waitForEvent())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.snapshots
		if !ok {
			return snapshotsClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg{event: event}
	}
}

func (m *Model) send(cmd game.Command) tea.Cmd {
	result := m.commander.Enqueue(cmd)
	return func() tea.Msg {
		return commandResultMsg{cmd: cmd, err: <-result}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = game.Snapshot(msg)
		m.hasSnap = true
		return m, m.waitForSnapshot()

	case snapshotsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case eventMsg:
		if line := m.formatter.Format(msg.event); line != "" {
			m.AddLogEntry(line)
		}
		return m, m.waitForEvent()

	case commandResultMsg:
		if msg.err != nil {
			m.logger.Debug("Command rejected", "kind", msg.cmd.Kind, "error", msg.err)
			m.lastErr = msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeLog()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	switch {
	case key.Matches(msg, keys.ScrollUp):
		m.logViewport.HalfPageUp()
		return m, nil
	case key.Matches(msg, keys.ScrollDn):
		m.logViewport.HalfPageDown()
		return m, nil
	}

	cmd, ok := m.commandFor(msg)
	if !ok {
		return m, nil
	}
	m.lastErr = ""
	return m, m.send(cmd)
}

// commandFor maps a key press to a command for the current phase
func (m *Model) commandFor(msg tea.KeyMsg) (game.Command, bool) {
	s := m.snap
	if s.RestartPending {
		switch {
		case key.Matches(msg, keys.Yes):
			return game.Command{Kind: game.CommandConfirmRestart}, true
		case key.Matches(msg, keys.No):
			return game.Command{Kind: game.CommandCancelRestart}, true
		}
		return game.Command{}, false
	}
	if !s.Phase.IsTerminal() && key.Matches(msg, keys.Abandon) {
		return game.Command{Kind: game.CommandRequestRestart}, true
	}

	switch s.Phase {
	case game.PhaseBetting:
		if s.BetConfirmed {
			return game.Command{}, false
		}
		switch {
		case key.Matches(msg, keys.BetUp):
			return game.Command{Kind: game.CommandAdjustBet, Amount: 1}, true
		case key.Matches(msg, keys.BetDown):
			return game.Command{Kind: game.CommandAdjustBet, Amount: -1}, true
		case key.Matches(msg, keys.BetUp10):
			return game.Command{Kind: game.CommandAdjustBet, Amount: 10}, true
		case key.Matches(msg, keys.BetDown10):
			return game.Command{Kind: game.CommandAdjustBet, Amount: -10}, true
		case key.Matches(msg, keys.Confirm):
			return game.Command{Kind: game.CommandConfirmBet, Amount: s.Bet}, true
		case key.Matches(msg, keys.AllIn):
			return game.Command{Kind: game.CommandAllIn}, true
		}

	case game.PhaseIdle:
		if s.WildInputRequired {
			switch {
			case key.Matches(msg, keys.WildDigit):
				return game.Command{Kind: game.CommandEnterWildDigit, Digit: msg.String()}, true
			case key.Matches(msg, keys.Backspace):
				return game.Command{Kind: game.CommandBackspaceWildInput}, true
			case key.Matches(msg, keys.Submit):
				return game.Command{Kind: game.CommandSubmitWildInput}, true
			}
			return game.Command{}, false
		}
		switch {
		case key.Matches(msg, keys.Hit):
			return game.Command{Kind: game.CommandHit}, true
		case key.Matches(msg, keys.Stand):
			return game.Command{Kind: game.CommandStand}, true
		}

	case game.PhaseRoundEnd:
		if key.Matches(msg, keys.Advance) {
			return game.Command{Kind: game.CommandAdvanceRound}, true
		}

	case game.PhaseGameOver, game.PhaseGameWon:
		if key.Matches(msg, keys.Restart) {
			return game.Command{Kind: game.CommandRestartGame}, true
		}
	}
	return game.Command{}, false
}

// helpKeys returns the bindings that do something in the current phase
func (m *Model) helpKeys() []key.Binding {
	s := m.snap
	if s.RestartPending {
		return []key.Binding{keys.Yes, keys.No, keys.Quit}
	}
	var bindings []key.Binding
	switch s.Phase {
	case game.PhaseBetting:
		if !s.BetConfirmed {
			bindings = append(bindings, keys.BetUp, keys.BetDown, keys.BetUp10, keys.BetDown10, keys.Confirm, keys.AllIn)
		}
	case game.PhaseIdle:
		if s.WildInputRequired {
			bindings = append(bindings, keys.WildDigit, keys.Backspace, keys.Submit)
		} else {
			bindings = append(bindings, keys.Hit, keys.Stand)
		}
	case game.PhaseRoundEnd:
		bindings = append(bindings, keys.Advance)
	case game.PhaseGameOver, game.PhaseGameWon:
		bindings = append(bindings, keys.Restart)
	}
	if !s.Phase.IsTerminal() {
		bindings = append(bindings, keys.Abandon)
	}
	return append(bindings, keys.ScrollUp, keys.Quit)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 || !m.hasSnap {
		return "Loading..."
	}

	table := m.renderTable()
	sidebar := PaneStyle.
		Width(sidebarWidth).
		Height(lipgloss.Height(table)).
		Render(m.renderSidebar())
	tablePane := PaneStyle.
		Width(max(m.width-sidebarWidth-4, 1)).
		Render(table)

	logPane := PaneStyle.
		Width(max(m.width-2, 1)).
		Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tablePane, sidebar),
		logPane,
		m.help.ShortHelpView(m.helpKeys()),
	)
}

func (m *Model) resizeLog() {
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.height-16, 3)
	m.logViewport.GotoBottom()
}

// renderTable draws both hands, the card in flight and the current prompt
func (m *Model) renderTable() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("PI Blackjack · Round %d", s.Round)))
	b.WriteString("\n\n")

	dealerTotal := ""
	if len(s.Dealer) > 0 {
		dealerTotal = " " + InfoStyle.Render("("+game.FormatTotal(s.DealerTotal)+")")
	}
	fmt.Fprintf(&b, "Dealer: %s%s\n", renderCards(s.Dealer), dealerTotal)

	playerTotal := ""
	if len(s.Player) > 0 {
		playerTotal = " " + InfoStyle.Render("("+game.FormatTotal(s.PlayerTotal)+")")
	}
	fmt.Fprintf(&b, "Player: %s%s\n\n", renderCards(s.Player), playerTotal)

	if p := s.InFlight; p != nil {
		line := fmt.Sprintf("Dealing %s to %s %3.0f%%", renderCard(p.Card), p.Seat, p.Progress*100)
		if s.Queued > 0 {
			line += fmt.Sprintf(" (+%d queued)", s.Queued)
		}
		b.WriteString(InfoStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(m.renderPrompt())
	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.lastErr))
	}
	return b.String()
}

func (m *Model) renderPrompt() string {
	s := m.snap
	if s.RestartPending {
		return WarningStyle.Render("Restart the game? Your current bet is lost. (y/n)")
	}
	switch s.Phase {
	case game.PhaseBetting:
		if s.BetConfirmed {
			return InfoStyle.Render(fmt.Sprintf("Bet %d placed, dealing...", s.Bet))
		}
		return ActionsStyle.Render(fmt.Sprintf("Place your bet: %d", s.Bet))
	case game.PhaseDealing:
		return InfoStyle.Render("Dealing...")
	case game.PhaseIdle:
		if s.WildInputRequired {
			return WarningStyle.Render("Your PI card needs a value: ") + ActionsStyle.Render(s.WildInput+"_")
		}
		return ActionsStyle.Render("Hit or stand?")
	case game.PhaseDealerTurn:
		return InfoStyle.Render("Dealer plays...")
	case game.PhaseRoundEnd:
		return m.renderResult()
	case game.PhaseGameOver:
		return ErrorStyle.Render("Game over! You are out of coins.")
	case game.PhaseGameWon:
		if s.ShowResult {
			return m.renderResult()
		}
		return SuccessStyle.Render(fmt.Sprintf("You win the game with %d coins!", s.Balance))
	}
	return ""
}

func (m *Model) renderResult() string {
	s := m.snap
	if s.Settlement == nil {
		return ""
	}
	style := WarningStyle
	switch net := s.Settlement.Net(); {
	case net > 0:
		style = SuccessStyle
	case net < 0:
		style = ErrorStyle
	}
	return style.Render(fmt.Sprintf("%s (%+d)", s.Result, s.Settlement.Net()))
}

func (m *Model) renderSidebar() string {
	s := m.snap
	var b strings.Builder
	fmt.Fprintf(&b, "Balance: %s\n", HandInfoStyle.Render(fmt.Sprintf("%d", s.Balance)))
	fmt.Fprintf(&b, "Target:  %d\n", s.WinningTarget)
	fmt.Fprintf(&b, "Bet:     %s\n\n", WarningStyle.Render(fmt.Sprintf("%d", s.Bet)))
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Deck: %d cards", s.DeckRemaining)))
	if s.DeckRebuilds > 0 {
		b.WriteString(InfoStyle.Render(fmt.Sprintf(" (%d reshuffles)", s.DeckRebuilds)))
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Phase: " + s.Phase.String()))
	return b.String()
}

func renderCards(cards []game.CardView) string {
	if len(cards) == 0 {
		return InfoStyle.Render("-")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = renderCard(c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func renderCard(c game.CardView) string {
	switch {
	case c.FaceDown:
		return HiddenCardStyle.Render(c.Label())
	case c.Wild:
		label := c.Rank
		if c.Value != nil {
			label += "=" + game.FormatTotal(*c.Value)
		}
		return WildCardStyle.Render(label)
	case c.Red:
		return RedCardStyle.Render(c.Label())
	default:
		return BlackCardStyle.Render(c.Label())
	}
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if len(m.gameLog) > maxLogLines {
		m.gameLog = m.gameLog[len(m.gameLog)-maxLogLines:]
	}

	m.logViewport.SetContent(GameLogStyle.Render(strings.Join(m.gameLog, "\n")))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the game log
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Run starts the TUI program on the terminal and blocks until it quits
func Run(cfg Config, opts ...tea.ProgramOption) error {
	model := New(cfg)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	_, err := program.Run()
	return err
}
