// Package driver runs a game.Session at a fixed frame rate on a single
// goroutine. Commands from any goroutine are queued and applied at the
// start of the next frame; a snapshot of the session is published after
// every frame.
package driver

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/piblackjack/internal/game"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

const commandQueueSize = 64

// ErrQueueFull is returned when commands arrive faster than frames drain them.
var ErrQueueFull = errors.New("command queue full")

type request struct {
	cmd    game.Command
	result chan error
}

// Option configures a Driver
type Option func(*Driver)

// WithClock paces frames with clock. Tests pass a *quartz.Mock.
func WithClock(clock quartz.Clock) Option {
	return func(d *Driver) { d.clock = clock }
}

// WithFPS sets the frame rate.
func WithFPS(fps int) Option {
	return func(d *Driver) {
		if fps > 0 {
			d.interval = time.Second / time.Duration(fps)
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// Driver owns a Session. Only the frame goroutine touches the session.
type Driver struct {
	session  *game.Session
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger
	commands chan request

	lastFrame time.Time

	mu          sync.RWMutex
	latest      game.Snapshot
	subscribers map[int]chan game.Snapshot
	nextID      int
}

// New creates a driver for session. The session must not be used directly
// once the driver has started.
func New(session *game.Session, opts ...Option) *Driver {
	d := &Driver{
		session:     session,
		clock:       quartz.NewReal(),
		interval:    time.Second / DefaultFPS,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		commands:    make(chan request, commandQueueSize),
		subscribers: make(map[int]chan game.Snapshot),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithPrefix("driver")
	d.latest = session.Snapshot()
	return d
}

// Interval returns the duration of one frame.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Start registers the frame ticker and returns immediately. Frames run
// until ctx is cancelled; the returned Waiter reports why they stopped.
func (d *Driver) Start(ctx context.Context) quartz.Waiter {
	d.lastFrame = d.clock.Now()
	d.logger.Info("Frame driver started", "fps", int(time.Second/d.interval), "interval", d.interval)
	return d.clock.TickerFunc(ctx, d.interval, d.frame, "driver", "frame")
}

// Run starts the driver and blocks until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	err := d.Start(ctx).Wait()
	if errors.Is(err, context.Canceled) {
		d.logger.Info("Frame driver stopped")
		return nil
	}
	return err
}

func (d *Driver) frame() error {
	now := d.clock.Now()
	dt := now.Sub(d.lastFrame)
	d.lastFrame = now

drain:
	for {
		select {
		case req := <-d.commands:
			err := d.session.Apply(req.cmd)
			if err != nil {
				d.logger.Debug("Command not applied", "kind", req.cmd.Kind, "error", err)
			}
			req.result <- err
		default:
			break drain
		}
	}

	d.session.Tick(dt)
	d.publish(d.session.Snapshot())
	return nil
}

// Enqueue queues cmd for the next frame without waiting. The returned
// channel receives the command's result once it has been applied.
func (d *Driver) Enqueue(cmd game.Command) <-chan error {
	result := make(chan error, 1)
	select {
	case d.commands <- request{cmd: cmd, result: result}:
	default:
		d.logger.Warn("Dropping command", "kind", cmd.Kind, "error", ErrQueueFull)
		result <- ErrQueueFull
	}
	return result
}

// Submit queues cmd and waits for the frame that applies it.
func (d *Driver) Submit(ctx context.Context, cmd game.Command) error {
	select {
	case err := <-d.Enqueue(cmd):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the most recently published snapshot.
func (d *Driver) Latest() game.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest
}

// Subscribe returns a channel that receives snapshots whenever the session
// changes. Slow readers only ever see the newest snapshot. The returned
// function unsubscribes and closes the channel.
func (d *Driver) Subscribe() (<-chan game.Snapshot, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	ch := make(chan game.Snapshot, 1)
	ch <- d.latest
	d.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.subscribers, id)
			close(ch)
		})
	}
}

func (d *Driver) publish(snap game.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := snap.Version != d.latest.Version
	d.latest = snap
	if !changed {
		return
	}
	for _, ch := range d.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
