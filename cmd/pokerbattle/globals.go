package main

import (
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/pokerbattle/internal/config"
)

// Globals are flags shared by every command
type Globals struct {
	Config   string `short:"c" type:"path" help:"HCL configuration file"`
	LogLevel string `help:"Log level (debug, info, warn, error)" placeholder:"LEVEL"`
	NoColor  bool   `help:"Disable colored output"`
}

func (g *Globals) applyColor() {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// loadConfig reads the configuration file, falling back to defaults
func (g *Globals) loadConfig() (*config.Config, error) {
	return config.Load(g.Config)
}

// logger builds a stderr logger at the flag's level, or at fallback when the
// flag is unset
func (g *Globals) logger(fallback string) (*log.Logger, error) {
	name := g.LogLevel
	if name == "" {
		name = fallback
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}
