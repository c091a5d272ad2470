package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/piblackjack/internal/auth"
	"github.com/lox/piblackjack/internal/driver"
	"github.com/lox/piblackjack/internal/game"
	"github.com/lox/piblackjack/internal/history"
	"github.com/lox/piblackjack/internal/randutil"
	"github.com/lox/piblackjack/internal/server"
)

// ServeCmd exposes one session over WebSocket
type ServeCmd struct {
	Address     string `help:"Listen address (overrides config)"`
	Port        int    `help:"Listen port (overrides config)"`
	Token       string `env:"PIBLACKJACK_TOKEN" help:"Require clients to present this token (overrides config)"`
	Seed        int64  `help:"Shuffle seed (overrides config; 0 picks one)"`
	HistoryFile string `help:"Write the round history as JSON to this file on exit"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Address != "" {
		cfg.Server.Address = c.Address
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Seed != 0 {
		cfg.Runtime.Seed = c.Seed
	}
	if c.Token != "" {
		cfg.Server.Token = c.Token
	}

	logger := newLogger(os.Stderr, cfg)
	seed, chosen := randutil.Seed(cfg.Runtime.Seed)

	session := game.NewSession(
		game.WithRules(cfg.Rules()),
		game.WithSeed(seed),
		game.WithLogger(logger),
	)
	recorder := history.NewRecorder(seed, time.Now())
	session.Subscribe(recorder)

	d := driver.New(session, driver.WithFPS(cfg.Runtime.FPS), driver.WithLogger(logger))
	srv := server.NewServer(d, logger, server.WithValidator(auth.New(cfg.Server.Token)))

	logger.Info("Starting PI blackjack server",
		"address", cfg.ServerAddress(),
		"seed", seed,
		"random_seed", chosen,
		"starting_coins", cfg.Game.StartingCoins,
		"winning_target", cfg.Game.WinningTarget,
		"frame", frameInterval(cfg.Runtime.FPS),
		"auth", cfg.Server.Token != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return d.Run(ctx)
	})
	eg.Go(func() error {
		return srv.Serve(ctx, cfg.ServerAddress())
	})
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("Server stopped")

	if c.HistoryFile != "" {
		if err := recorder.WriteFile(c.HistoryFile); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		logger.Info("Wrote history", "file", c.HistoryFile, "rounds", len(recorder.Rounds()))
	}
	return nil
}
