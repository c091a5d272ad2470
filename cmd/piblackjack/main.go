package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/piblackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every subcommand
type Globals struct {
	Config   string           `short:"c" default:"piblackjack.hcl" help:"Path to HCL config file (missing file uses defaults)"`
	LogLevel string           `help:"Log level override (debug, info, warn, error)"`
	Version  kong.VersionFlag `short:"v" help:"Show version"`
}

type CLI struct {
	Globals

	Play     PlayCmd     `cmd:"" default:"withargs" help:"Play in the terminal"`
	Serve    ServeCmd    `cmd:"" help:"Serve the game over WebSocket"`
	Connect  ConnectCmd  `cmd:"" help:"Play a served game in the terminal"`
	Simulate SimulateCmd `cmd:"" help:"Simulate sessions with a fixed strategy"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("piblackjack"),
		kong.Description("Blackjack where face cards are worth PI and jokers take any value"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// loadConfig reads the config file and applies global overrides
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", g.Config, err)
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds a logger writing to w at the configured level
func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// openLogFile opens path for appending, creating it if needed
func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}
