package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/piblackjack/internal/deck"
	"github.com/lox/piblackjack/internal/randutil"
)

// Session owns everything that lives across rounds: the coin balance, the
// current phase and the round in progress. It is not safe for concurrent
// use; a single goroutine issues commands and ticks (see internal/driver).
type Session struct {
	rules  Rules
	rng    *rand.Rand
	decks  DeckSource
	layout Layout
	clock  quartz.Clock
	logger *log.Logger
	bus    EventBus

	deck   *deck.Deck
	player *Hand
	dealer *Hand
	seq    Sequencer

	phase          Phase
	balance        int
	bet            int
	betConfirmed   bool
	allIn          bool
	chipRemaining  time.Duration
	wildInput      strings.Builder
	dealerRevealed bool
	settlement     *Settlement
	restartPending bool

	round        int
	deckRebuilds int
	version      uint64
	frame        uint64
	ticking      bool
	resultUntil  uint64
}

// NewSession creates a session in the betting phase with the starting balance.
func NewSession(opts ...SessionOption) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		seed, _ := randutil.Seed(0)
		cfg.rng = randutil.New(seed)
	}

	s := &Session{
		rules:  cfg.rules,
		rng:    cfg.rng,
		decks:  cfg.decks,
		layout: cfg.layout,
		clock:  cfg.clock,
		logger: cfg.logger.WithPrefix("session"),
		bus:    cfg.bus,
		player: NewHand(SeatPlayer),
		dealer: NewHand(SeatDealer),
		phase:  PhaseBetting,
	}
	s.balance = s.rules.StartingCoins
	s.round = 1
	s.resetRound()
	return s
}

// Subscribe registers a subscriber on the session's event bus.
func (s *Session) Subscribe(sub EventSubscriber) {
	s.bus.Subscribe(sub)
}

func (s *Session) Phase() Phase { return s.phase }
func (s *Session) Balance() int { return s.balance }
func (s *Session) Bet() int { return s.bet }
func (s *Session) Round() int { return s.round }
func (s *Session) Rules() Rules { return s.rules }
func (s *Session) Player() *Hand { return s.player }
func (s *Session) Dealer() *Hand { return s.dealer }
func (s *Session) Version() uint64 { return s.version }
func (s *Session) WildInput() string { return s.wildInput.String() }
func (s *Session) DeckRemaining() int { return s.deck.Remaining() }
func (s *Session) DeckRebuilds() int { return s.deckRebuilds }
func (s *Session) Sequencer() *Sequencer { return &s.seq }
func (s *Session) Settlement() *Settlement { return s.settlement }
func (s *Session) RestartPending() bool { return s.restartPending }

// AdjustBet changes the pending bet by delta, clamped to [0, balance].
func (s *Session) AdjustBet(delta int) error {
	if s.restartPending || s.phase != PhaseBetting || s.betConfirmed {
		return s.rejected("adjust bet")
	}
	s.bet = min(max(s.bet+delta, 0), s.balance)
	s.touch()
	return nil
}

// ConfirmBet locks in amount and debits it from the balance. The deal
// starts once the chip transfer has run for the configured duration.
func (s *Session) ConfirmBet(amount int) error {
	return s.confirm(amount, false)
}

// AllIn confirms a bet of the whole balance.
func (s *Session) AllIn() error {
	return s.confirm(s.balance, true)
}

func (s *Session) confirm(amount int, allIn bool) error {
	if s.restartPending || s.phase != PhaseBetting || s.betConfirmed {
		return s.rejected("confirm bet")
	}
	if amount <= 0 || amount > s.balance {
		return fmt.Errorf("%w: %d with balance %d", ErrInvalidBet, amount, s.balance)
	}

	s.bet = amount
	s.betConfirmed = true
	s.allIn = allIn
	s.balance -= amount
	s.chipRemaining = s.rules.ChipDuration
	s.logger.Info("Bet confirmed", "round", s.round, "bet", amount, "balance", s.balance, "allIn", allIn)
	s.publish(BetConfirmedEvent{Bet: amount, BalanceAfter: s.balance, AllIn: allIn, timestamp: s.clock.Now()})
	s.touch()
	return nil
}

// Hit deals one more card to the player.
func (s *Session) Hit() error {
	if s.restartPending || s.phase != PhaseIdle || RequiresWildInput(s.player) {
		return s.rejected("hit")
	}
	s.setPhase(PhaseDealing)
	s.enqueue(s.player, false)
	s.logger.Debug("Player hits", "cards", s.player.Len())
	return nil
}

// Stand ends the player's turn and runs the dealer policy immediately.
func (s *Session) Stand() error {
	if s.restartPending || s.phase != PhaseIdle || RequiresWildInput(s.player) {
		return s.rejected("stand")
	}
	s.logger.Debug("Player stands", "total", SettledTotal(s.player, false))
	s.setPhase(PhaseDealerTurn)
	s.playDealer()
	return nil
}

// EnterWildDigit appends a digit to the pending wild value entry. Any
// other character discards the partial entry.
func (s *Session) EnterWildDigit(d rune) error {
	if s.restartPending || !s.awaitingWild() {
		return s.rejected("enter wild digit")
	}
	if d < '0' || d > '9' {
		if text := s.wildInput.String(); text != "" {
			s.wildInput.Reset()
			s.touch()
			s.logger.Debug("Discarded wild input", "input", text, "key", string(d))
			s.publish(WildInputDiscardedEvent{Input: text + string(d), timestamp: s.clock.Now()})
		}
		return fmt.Errorf("%w: %q is not a digit", ErrInvalidWildInput, d)
	}
	s.wildInput.WriteRune(d)
	s.touch()
	return nil
}

// BackspaceWildInput removes the last digit of the pending entry.
func (s *Session) BackspaceWildInput() error {
	if s.restartPending || !s.awaitingWild() {
		return s.rejected("backspace wild input")
	}
	text := s.wildInput.String()
	if text == "" {
		return nil
	}
	s.wildInput.Reset()
	s.wildInput.WriteString(text[:len(text)-1])
	s.touch()
	return nil
}

// SubmitWildInput assigns the pending entry to the player's first
// unresolved wild card. Invalid entries are discarded and reported with
// ErrInvalidWildInput; the round is unaffected.
func (s *Session) SubmitWildInput() error {
	if s.restartPending || !s.awaitingWild() {
		return s.rejected("submit wild input")
	}
	text := s.wildInput.String()
	if text == "" {
		return nil
	}
	s.wildInput.Reset()
	s.touch()

	value, err := ParseWildInput(text)
	if err != nil {
		s.logger.Debug("Discarded wild input", "input", text, "error", err)
		s.publish(WildInputDiscardedEvent{Input: text, timestamp: s.clock.Now()})
		return err
	}

	assigned, ok := AssignPlayerWild(s.player, value)
	if !ok {
		violation("SubmitWildInput", "no unresolved wild in player hand")
	}
	s.logger.Info("Player assigned wild", "index", assigned.Index, "value", value)
	s.publish(WildAssignedEvent{WildAssignment: assigned, timestamp: s.clock.Now()})
	s.afterPlayerCards()
	return nil
}

// SubmitWildValue replaces the pending entry with text and submits it.
func (s *Session) SubmitWildValue(text string) error {
	if s.restartPending || !s.awaitingWild() {
		return s.rejected("submit wild value")
	}
	s.wildInput.Reset()
	s.wildInput.WriteString(text)
	return s.SubmitWildInput()
}

// AdvanceRound leaves the round result. A session with no coins left ends
// in game over, otherwise the next round starts in betting.
func (s *Session) AdvanceRound() error {
	if s.restartPending || s.phase != PhaseRoundEnd {
		return s.rejected("advance round")
	}
	if s.balance <= 0 {
		s.logger.Info("Out of coins", "round", s.round)
		s.setPhase(PhaseGameOver)
		return nil
	}
	s.round++
	s.resetRound()
	s.setPhase(PhaseBetting)
	return nil
}

// RestartGame restores the starting balance after a terminal phase.
func (s *Session) RestartGame() error {
	if !s.phase.IsTerminal() {
		return s.rejected("restart game")
	}
	s.reset()
	return nil
}

// RequestRestart asks to abandon the game in progress. The session pauses
// until ConfirmRestart or CancelRestart; a confirmed restart forfeits the
// current bet.
func (s *Session) RequestRestart() error {
	if s.phase.IsTerminal() || s.restartPending {
		return s.rejected("request restart")
	}
	s.restartPending = true
	s.touch()
	s.logger.Debug("Restart requested", "phase", s.phase, "round", s.round)
	return nil
}

// ConfirmRestart performs a requested restart.
func (s *Session) ConfirmRestart() error {
	if !s.restartPending {
		return s.rejected("confirm restart")
	}
	s.reset()
	return nil
}

// CancelRestart resumes the game after a restart request.
func (s *Session) CancelRestart() error {
	if !s.restartPending {
		return s.rejected("cancel restart")
	}
	s.restartPending = false
	s.touch()
	s.logger.Debug("Restart cancelled", "phase", s.phase, "round", s.round)
	return nil
}

func (s *Session) reset() {
	s.restartPending = false
	s.balance = s.rules.StartingCoins
	s.round = 1
	s.resetRound()
	s.logger.Info("Session restarted", "balance", s.balance)
	s.publish(SessionResetEvent{Balance: s.balance, timestamp: s.clock.Now()})
	s.setPhase(PhaseBetting)
}

// Tick advances the session by one frame of dt. Betting runs the chip
// transfer; dealing and the dealer turn advance the deal sequencer and
// react when it drains.
func (s *Session) Tick(dt time.Duration) {
	s.frame++
	s.ticking = true
	defer func() { s.ticking = false }()
	if s.resultUntil != 0 && s.frame == s.resultUntil {
		s.touch()
	}
	if s.restartPending {
		return
	}

	switch s.phase {
	case PhaseBetting:
		if !s.betConfirmed {
			return
		}
		s.chipRemaining -= dt
		if s.chipRemaining <= 0 {
			s.startDeal()
		}
		s.touch()

	case PhaseDealing, PhaseDealerTurn:
		if s.seq.Idle() {
			return
		}
		step := s.seq.Advance(dt)
		s.touch()
		if step.Committed != nil {
			p := step.Committed
			s.publish(CardCommittedEvent{
				Seat:      p.Target.Seat(),
				Card:      p.Card,
				HandSize:  p.Target.Len(),
				timestamp: s.clock.Now(),
			})
		}
		if !step.Drained {
			return
		}
		if s.phase == PhaseDealing {
			s.afterPlayerCards()
		} else {
			s.playDealer()
		}
	}
}

func (s *Session) startDeal() {
	s.chipRemaining = 0
	s.setPhase(PhaseDealing)
	s.enqueue(s.player, false)
	s.enqueue(s.dealer, false)
	s.enqueue(s.player, false)
	s.enqueue(s.dealer, true)
	s.logger.Debug("Dealing round", "round", s.round, "deck", s.deck.Remaining())
}

// afterPlayerCards decides the player's turn once every queued card has
// landed or a wild value has been assigned.
func (s *Session) afterPlayerCards() {
	if RequiresWildInput(s.player) {
		s.logger.Debug("Waiting for wild value", "index", s.player.FirstPendingWild())
		s.setPhase(PhaseIdle)
		return
	}
	total := SettledTotal(s.player, false)
	if IsBust(total) {
		s.logger.Debug("Player busts", "total", total)
		s.settle()
		return
	}
	s.setPhase(PhaseIdle)
}

// playDealer runs one step of the dealer policy. It is entered on stand
// and again each time a dealer hit lands, so the dealer's hit loop is a
// self-transition of the dealer turn driven by the sequencer draining.
func (s *Session) playDealer() {
	if !s.dealerRevealed {
		s.dealerRevealed = true
		if s.dealer.Reveal() > 0 {
			s.logger.Debug("Dealer reveals", "cards", s.dealer.Cards())
			s.publish(DealerRevealEvent{Cards: s.dealer.Cards(), timestamp: s.clock.Now()})
		}
	}

	for _, a := range AutoAssignDealerWilds(s.dealer) {
		s.logger.Info("Dealer assigned wild", "index", a.Index, "value", a.Value)
		s.publish(WildAssignedEvent{WildAssignment: a, Automatic: true, timestamp: s.clock.Now()})
	}

	total := SettledTotal(s.dealer, true)
	if total < DealerStand {
		s.logger.Debug("Dealer hits", "total", total)
		s.enqueue(s.dealer, false)
		s.touch()
		return
	}
	s.logger.Debug("Dealer stands", "total", total)
	s.settle()
}

func (s *Session) settle() {
	playerTotal := SettledTotal(s.player, false)
	s.dealer.Reveal()
	// A busted player ends the round before the dealer plays, so the
	// dealer's wild cards may still be unresolved.
	dealerTotal := Total(s.dealer, true)
	if !IsBust(playerTotal) {
		dealerTotal = SettledTotal(s.dealer, true)
	}

	st := Settle(playerTotal, dealerTotal, s.bet)
	s.balance += st.Payout
	st.BalanceAfter = s.balance
	s.settlement = &st

	s.logger.Info("Round settled",
		"round", s.round,
		"outcome", st.Outcome,
		"player", fmt.Sprintf("%.2f", playerTotal),
		"dealer", fmt.Sprintf("%.2f", dealerTotal),
		"payout", st.Payout,
		"balance", s.balance)
	s.publish(RoundSettledEvent{
		Round:       s.round,
		Settlement:  st,
		PlayerCards: s.player.Cards(),
		DealerCards: s.dealer.Cards(),
		timestamp:   s.clock.Now(),
	})

	if s.balance >= s.rules.WinningTarget {
		// The result stays on screen for the frame being built.
		s.resultUntil = s.frame + 1
		if !s.ticking {
			s.resultUntil++
		}
		s.setPhase(PhaseGameWon)
		return
	}
	s.setPhase(PhaseRoundEnd)
}

// enqueue draws a card and queues its flight to target.
func (s *Session) enqueue(target *Hand, faceDown bool) {
	card := s.draw()
	index := target.Len() + s.seq.Pending(target)

	var to Point
	if target == s.player {
		to = s.layout.PlayerSlot(index, index+1)
	} else {
		to = s.layout.DealerSlot(index)
	}
	s.seq.Enqueue(NewPlacement(card, target, s.layout.DeckPosition(), to, s.rules.DealDuration, faceDown))
	s.publish(CardQueuedEvent{Seat: target.Seat(), FaceDown: faceDown, Queued: s.seq.Queued(), timestamp: s.clock.Now()})
}

// draw takes the next card, replacing an exhausted deck. Cards already
// dealt are unaffected by the replacement.
func (s *Session) draw() deck.Card {
	card, err := s.deck.Draw()
	if errors.Is(err, deck.ErrDeckExhausted) {
		s.deck = s.decks(s.rng)
		s.deckRebuilds++
		s.logger.Info("Deck exhausted, rebuilt", "round", s.round, "rebuilds", s.deckRebuilds, "cards", s.deck.Remaining())
		s.publish(DeckRebuiltEvent{Round: s.round, Rebuilds: s.deckRebuilds, timestamp: s.clock.Now()})
		card, err = s.deck.Draw()
	}
	if err != nil {
		violation("draw", "replacement deck unusable: %v", err)
	}
	return card
}

func (s *Session) resetRound() {
	s.deck = s.decks(s.rng)
	s.player.reset()
	s.dealer.reset()
	s.seq.Reset()
	s.bet = 0
	s.betConfirmed = false
	s.allIn = false
	s.chipRemaining = 0
	s.wildInput.Reset()
	s.dealerRevealed = false
	s.settlement = nil
	s.resultUntil = 0
	s.touch()
}

func (s *Session) awaitingWild() bool {
	return s.phase == PhaseIdle && RequiresWildInput(s.player)
}

func (s *Session) rejected(op string) error {
	s.logger.Debug("Command rejected", "op", op, "phase", s.phase)
	return fmt.Errorf("%w: %s during %s", ErrInvalidPhase, op, s.phase)
}

func (s *Session) setPhase(to Phase) {
	from := s.phase
	s.phase = to
	s.touch()
	if from == to {
		return
	}
	s.logger.Debug("Phase change", "from", from, "to", to, "round", s.round)
	s.publish(PhaseChangeEvent{From: from, To: to, Round: s.round, timestamp: s.clock.Now()})
}

func (s *Session) publish(event GameEvent) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func (s *Session) touch() {
	s.version++
}
