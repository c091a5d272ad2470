package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/piblackjack/internal/client"
	"github.com/lox/piblackjack/internal/tui"
)

// ConnectCmd plays a served session in the terminal
type ConnectCmd struct {
	Server  string `default:"ws://localhost:8080/ws" help:"WebSocket server URL"`
	Token   string `env:"PIBLACKJACK_TOKEN" help:"Token to present to the server (overrides config)"`
	LogFile string `help:"Debug log file (overrides config)"`
	NoColor bool   `help:"Disable colours"`
}

func (c *ConnectCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.Token != "" {
		cfg.Server.Token = c.Token
	}
	if c.NoColor {
		tui.DisableColor()
	}

	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger := newLogger(logFile, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := client.Dial(dialCtx, c.Server, cfg.Server.Token, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	err = tui.Run(tui.Config{
		Commander: conn,
		Snapshots: conn.Snapshots(),
		Logger:    logger,
	}, tea.WithContext(ctx))
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
