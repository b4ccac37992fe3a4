package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/pokerbattle/internal/server"
)

// ServeCmd runs the HTTP and WebSocket table server
type ServeCmd struct {
	Addr string `help:"Override the listen address"`
	Seed *int64 `help:"Deterministic seed for table decks (optional)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}

	logger, err := g.logger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	s, err := server.NewServer(cfg, server.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting pokerbattle server",
		"address", cfg.Server.Address,
		"handSize", cfg.Game.HandSize,
		"joker", cfg.Game.IncludeJoker,
		"maxTables", cfg.Server.MaxTables)
	return s.Start(ctx)
}
