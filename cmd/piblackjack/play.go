package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/lox/piblackjack/internal/driver"
	"github.com/lox/piblackjack/internal/game"
	"github.com/lox/piblackjack/internal/history"
	"github.com/lox/piblackjack/internal/randutil"
	"github.com/lox/piblackjack/internal/statistics"
	"github.com/lox/piblackjack/internal/tui"
)

// PlayCmd runs the game in the terminal
type PlayCmd struct {
	Seed        int64  `help:"Shuffle seed (overrides config; 0 picks one)"`
	HistoryFile string `help:"Write the round history as JSON to this file on exit"`
	LogFile     string `help:"Debug log file (overrides config)"`
	NoColor     bool   `help:"Disable colours"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.Seed != 0 {
		cfg.Runtime.Seed = c.Seed
	}
	if c.NoColor {
		tui.DisableColor()
	}

	// The terminal belongs to the TUI, so logs go to a file
	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger := newLogger(logFile, cfg)

	seed, chosen := randutil.Seed(cfg.Runtime.Seed)
	logger.Info("Starting session", "seed", seed, "random", chosen, "fps", cfg.Runtime.FPS)

	session := game.NewSession(
		game.WithRules(cfg.Rules()),
		game.WithSeed(seed),
		game.WithLogger(logger),
	)
	feed := tui.NewEventFeed(256)
	collector := statistics.NewCollector()
	recorder := history.NewRecorder(seed, time.Now())
	session.Subscribe(feed)
	session.Subscribe(collector)
	session.Subscribe(recorder)

	d := driver.New(session, driver.WithFPS(cfg.Runtime.FPS), driver.WithLogger(logger))

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	snapshots, unsubscribe := d.Subscribe()
	defer unsubscribe()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return d.Run(ctx)
	})
	eg.Go(func() error {
		// Quitting the TUI stops the driver
		defer cancel()
		err := tui.Run(tui.Config{
			Commander: d,
			Snapshots: snapshots,
			Events:    feed,
			Logger:    logger,
		}, tea.WithContext(ctx))
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	runErr := eg.Wait()

	stats := collector.Statistics()
	logger.Info("Session finished",
		"rounds", stats.Rounds, "net", stats.AllNet, "wins", stats.Wins(), "losses", stats.Losses(), "pushes", stats.Pushes())

	if c.HistoryFile != "" {
		if err := recorder.WriteFile(c.HistoryFile); err != nil {
			logger.Error("Failed to write history", "file", c.HistoryFile, "error", err)
			return errors.Join(runErr, err)
		}
		logger.Info("Wrote history", "file", c.HistoryFile, "rounds", len(recorder.Rounds()))
	}
	return runErr
}
