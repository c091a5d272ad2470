package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/piblackjack/internal/randutil"
	"github.com/lox/piblackjack/internal/simulator"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// SimulateCmd plays many sessions headless and prints aggregate results
type SimulateCmd struct {
	Sessions int     `default:"1000" help:"Number of sessions to simulate"`
	Rounds   int     `default:"100" help:"Maximum rounds per session"`
	Bet      int     `default:"10" help:"Flat bet per round"`
	StandOn  float64 `default:"17" help:"Stand once the hand total reaches this"`
	Workers  int     `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Seed     int64   `default:"0" help:"RNG seed (0 for random)"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Sessions <= 0 {
		return fmt.Errorf("sessions must be positive, got %d", c.Sessions)
	}
	if c.Bet <= 0 {
		return fmt.Errorf("bet must be positive, got %d", c.Bet)
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := newLogger(os.Stderr, cfg)
	seed, _ := randutil.Seed(c.Seed)

	sim := simulator.New(simulator.Config{
		Sessions:  c.Sessions,
		MaxRounds: c.Rounds,
		Seed:      seed,
		Workers:   workers,
		Frame:     frameInterval(cfg.Runtime.FPS),
		Rules:     cfg.Rules(),
		Strategy:  simulator.ThresholdStrategy{FlatBet: c.Bet, StandOn: c.StandOn},
		Logger:    logger,
	})

	fmt.Println(titleStyle.Render(" π PI Blackjack simulation "))
	fmt.Printf("Simulating %d sessions of up to %d rounds (seed %d, %d workers)\n",
		c.Sessions, c.Rounds, seed, workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, result)
	fmt.Printf("\nCompleted in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
