package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/piblackjack/internal/deck"
	"github.com/lox/piblackjack/internal/randutil"
)

// DeckSource builds the deck used for a round, and the replacement deck
// when a round exhausts it.
type DeckSource func(rng *rand.Rand) *deck.Deck

// SessionOption configures a Session
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	rules  Rules
	rng    *rand.Rand
	decks  DeckSource
	layout Layout
	clock  quartz.Clock
	logger *log.Logger
	bus    EventBus
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		rules:  DefaultRules(),
		decks:  deck.New,
		layout: DefaultLayout(),
		clock:  quartz.NewReal(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		bus:    NewEventBus(),
	}
}

// WithRules overrides the default session rules.
func WithRules(rules Rules) SessionOption {
	return func(c *sessionConfig) { c.rules = rules }
}

// WithSeed seeds the shuffle source. A seed replays the same sequence of
// decks for the same sequence of commands.
func WithSeed(seed int64) SessionOption {
	return func(c *sessionConfig) { c.rng = randutil.New(seed) }
}

// WithRNG uses rng for every shuffle.
func WithRNG(rng *rand.Rand) SessionOption {
	return func(c *sessionConfig) { c.rng = rng }
}

// WithDeckSource replaces the shuffled 54-card deck, typically with
// deck.Stacked in tests.
func WithDeckSource(source DeckSource) SessionOption {
	return func(c *sessionConfig) { c.decks = source }
}

func WithLayout(layout Layout) SessionOption {
	return func(c *sessionConfig) { c.layout = layout }
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) SessionOption {
	return func(c *sessionConfig) { c.clock = clock }
}

func WithLogger(logger *log.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = logger }
}

// WithEventBus publishes session events on bus instead of a private bus.
func WithEventBus(bus EventBus) SessionOption {
	return func(c *sessionConfig) { c.bus = bus }
}
