package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/pokerbattle/internal/randutil"
	"github.com/lox/pokerbattle/internal/simulator"
)

// SimulateCmd plays rounds headless and prints a report
type SimulateCmd struct {
	Rounds   int    `short:"n" default:"10000" help:"Number of rounds to play"`
	Workers  int    `short:"w" help:"Parallel workers (default: CPU count, at most 8)"`
	Seed     *int64 `help:"Deterministic seed (default: config seed or time)"`
	HandSize *int   `help:"Cards per hand"`
	Joker    *bool  `help:"Include the joker"`
	Player   string `default:"suggest" enum:"stand,suggest" help:"Player redraw strategy (stand, suggest)"`
	Enemy    string `default:"suggest" enum:"stand,suggest" help:"Enemy redraw strategy (stand, suggest)"`
	Out      string `short:"o" type:"path" help:"Write the report as JSON to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, err := g.logger("warn")
	if err != nil {
		return err
	}

	rules := cfg.Game.Rules()
	if c.HandSize != nil {
		rules.HandSize = *c.HandSize
	}
	if c.Joker != nil {
		rules.IncludeJoker = *c.Joker
	}
	seed := cfg.Game.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	seed = randutil.Seed(seed, time.Now())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := simulator.New(simulator.Config{
		Rounds:         c.Rounds,
		Workers:        c.Workers,
		Seed:           seed,
		Rules:          rules,
		PlayerStrategy: simulator.Strategy(c.Player),
		EnemyStrategy:  simulator.Strategy(c.Enemy),
		Logger:         logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(" Simulation "))
	fmt.Println()
	fmt.Print(report.Summary())
	fmt.Printf("\nElapsed: %s\n", report.Elapsed.Round(time.Millisecond))

	if c.Out != "" {
		if err := report.WriteJSON(c.Out); err != nil {
			return err
		}
		logger.Info("Report written", "path", c.Out)
	}
	return nil
}
