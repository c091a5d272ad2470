// Package config loads piblackjack.hcl.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/piblackjack/internal/game"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "piblackjack.hcl"

// Config represents the complete configuration
type Config struct {
	Game    GameSettings
	Runtime RuntimeSettings
	Server  ServerSettings
	Log     LogSettings
}

// fileConfig mirrors the file layout; every block is optional.
type fileConfig struct {
	Game    *GameSettings    `hcl:"game,block"`
	Runtime *RuntimeSettings `hcl:"runtime,block"`
	Server  *ServerSettings  `hcl:"server,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// GameSettings contains the session rules
type GameSettings struct {
	StartingCoins  int `hcl:"starting_coins,optional"`
	WinningTarget  int `hcl:"winning_target,optional"`
	DealDurationMs int `hcl:"deal_duration_ms,optional"`
	ChipDurationMs int `hcl:"chip_duration_ms,optional"`
}

// RuntimeSettings contains frame pacing and shuffling
type RuntimeSettings struct {
	FPS  int   `hcl:"fps,optional"`
	Seed int64 `hcl:"seed,optional"` // 0 picks a seed from the clock
}

// ServerSettings contains the websocket listener
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
	Token   string `hcl:"token,optional"` // empty disables authentication
}

// LogSettings contains logging configuration
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Default returns the default configuration
func Default() *Config {
	rules := game.DefaultRules()
	return &Config{
		Game: GameSettings{
			StartingCoins:  rules.StartingCoins,
			WinningTarget:  rules.WinningTarget,
			DealDurationMs: int(rules.DealDuration / time.Millisecond),
			ChipDurationMs: int(rules.ChipDuration / time.Millisecond),
		},
		Runtime: RuntimeSettings{FPS: 60},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
		Log: LogSettings{
			Level: "info",
			File:  "piblackjack.log",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := &Config{}
	if fc.Game != nil {
		config.Game = *fc.Game
	}
	if fc.Runtime != nil {
		config.Runtime = *fc.Runtime
	}
	if fc.Server != nil {
		config.Server = *fc.Server
	}
	if fc.Log != nil {
		config.Log = *fc.Log
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Game.StartingCoins == 0 {
		c.Game.StartingCoins = def.Game.StartingCoins
	}
	if c.Game.WinningTarget == 0 {
		c.Game.WinningTarget = def.Game.WinningTarget
	}
	if c.Game.DealDurationMs == 0 {
		c.Game.DealDurationMs = def.Game.DealDurationMs
	}
	if c.Game.ChipDurationMs == 0 {
		// The chip transfer runs at half the speed of a card deal
		c.Game.ChipDurationMs = c.Game.DealDurationMs / 2
	}
	if c.Runtime.FPS == 0 {
		c.Runtime.FPS = def.Runtime.FPS
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Game.StartingCoins <= 0 {
		return fmt.Errorf("starting coins must be positive: %d", c.Game.StartingCoins)
	}
	if c.Game.WinningTarget <= c.Game.StartingCoins {
		return fmt.Errorf("winning target %d must exceed starting coins %d", c.Game.WinningTarget, c.Game.StartingCoins)
	}
	if c.Game.DealDurationMs < 0 || c.Game.ChipDurationMs < 0 {
		return fmt.Errorf("animation durations must not be negative")
	}
	if c.Runtime.FPS < 1 || c.Runtime.FPS > 240 {
		return fmt.Errorf("fps must be between 1 and 240: %d", c.Runtime.FPS)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// Rules converts the game block to session rules
func (c *Config) Rules() game.Rules {
	return game.Rules{
		StartingCoins: c.Game.StartingCoins,
		WinningTarget: c.Game.WinningTarget,
		DealDuration:  time.Duration(c.Game.DealDurationMs) * time.Millisecond,
		ChipDuration:  time.Duration(c.Game.ChipDurationMs) * time.Millisecond,
	}
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
