// Package config loads pokerbattle settings from HCL files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerbattle/internal/game"
)

// Config is the complete pokerbattle configuration
type Config struct {
	Game   GameSettings
	Server ServerSettings
}

// GameSettings are the rules applied to every table
type GameSettings struct {
	HandSize     int   `hcl:"hand_size,optional"`
	IncludeJoker bool  `hcl:"include_joker,optional"`
	Seed         int64 `hcl:"seed,optional"`
	EnemyRedraw  bool  `hcl:"enemy_redraw,optional"`
}

// ServerSettings configure the table server
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
	IdleTimeout    string   `hcl:"idle_timeout,optional"`
	ReapInterval   string   `hcl:"reap_interval,optional"`
	MaxTables      int      `hcl:"max_tables,optional"`
}

// rawBlock captures a block body so it can be decoded over the defaults
type rawBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type rawFile struct {
	Game   *rawBlock `hcl:"game,block"`
	Server *rawBlock `hcl:"server,block"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Game: GameSettings{
			HandSize:    game.DefaultConfig().HandSize,
			EnemyRedraw: true,
		},
		Server: ServerSettings{
			Address:        "localhost:8080",
			LogLevel:       "info",
			AllowedOrigins: []string{"*"},
			IdleTimeout:    "30m",
			ReapInterval:   "1m",
			MaxTables:      64,
		},
	}
}

// Load reads configuration from an HCL file. Attributes missing from the
// file keep their default values, and a missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	if err := decode(file.Body, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration from HCL source held in memory
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	cfg := Default()
	if err := decode(file.Body, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(body hcl.Body, cfg *Config) error {
	var raw rawFile
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if raw.Game != nil {
		if diags := gohcl.DecodeBody(raw.Game.Body, nil, &cfg.Game); diags.HasErrors() {
			return fmt.Errorf("failed to decode game block: %s", diags.Error())
		}
	}
	if raw.Server != nil {
		if diags := gohcl.DecodeBody(raw.Server.Body, nil, &cfg.Server); diags.HasErrors() {
			return fmt.Errorf("failed to decode server block: %s", diags.Error())
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Game.Rules().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	if c.Server.Address == "" {
		return fmt.Errorf("server: address must be set")
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("server: invalid log level %q", c.Server.LogLevel)
	}
	if c.Server.MaxTables <= 0 {
		return fmt.Errorf("server: max tables must be positive, got %d", c.Server.MaxTables)
	}
	if _, err := c.Server.IdleTimeoutDuration(); err != nil {
		return fmt.Errorf("server: idle_timeout: %w", err)
	}
	if _, err := c.Server.ReapIntervalDuration(); err != nil {
		return fmt.Errorf("server: reap_interval: %w", err)
	}
	return nil
}

// Rules converts the game settings into manager configuration
func (g GameSettings) Rules() game.Config {
	return game.Config{
		HandSize:     g.HandSize,
		IncludeJoker: g.IncludeJoker,
	}
}

// IdleTimeoutDuration returns how long a table may sit unused before it is
// removed
func (s ServerSettings) IdleTimeoutDuration() (time.Duration, error) {
	return positiveDuration(s.IdleTimeout)
}

// ReapIntervalDuration returns how often idle tables are checked for
func (s ServerSettings) ReapIntervalDuration() (time.Duration, error) {
	return positiveDuration(s.ReapInterval)
}

func positiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}
