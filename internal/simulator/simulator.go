// Package simulator plays many player-versus-enemy rounds in parallel and
// tallies the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerbattle/internal/game"
	"github.com/lox/pokerbattle/internal/hand"
	"github.com/lox/pokerbattle/internal/randutil"
)

// Strategy decides which cards a side redraws
type Strategy string

const (
	// StrategyStand never redraws
	StrategyStand Strategy = "stand"
	// StrategySuggest redraws with game.SuggestRedraw
	StrategySuggest Strategy = "suggest"
)

// Valid reports whether s is a known strategy
func (s Strategy) Valid() bool {
	return s == StrategyStand || s == StrategySuggest
}

func (s Strategy) indices(m *game.Manager, owner hand.Owner) []int {
	if s == StrategySuggest {
		return game.SuggestRedraw(m.Hand(owner))
	}
	return nil
}

// Config holds configuration for running simulations
type Config struct {
	Rounds         int
	Workers        int
	Seed           int64
	Rules          game.Config
	PlayerStrategy Strategy
	EnemyStrategy  Strategy
	Logger         *log.Logger
}

// Simulator runs battle simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration. Zero values
// pick defaults: one worker per CPU up to eight, the default rules and the
// suggest strategy for both sides.
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = min(runtime.NumCPU(), 8)
	}
	if config.Rules.HandSize == 0 {
		config.Rules.HandSize = game.DefaultConfig().HandSize
	}
	if config.PlayerStrategy == "" {
		config.PlayerStrategy = StrategySuggest
	}
	if config.EnemyStrategy == "" {
		config.EnemyStrategy = StrategySuggest
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config}
}

// Config returns the effective configuration
func (s *Simulator) Config() Config {
	return s.config
}

func (s *Simulator) validate() error {
	if s.config.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if !s.config.PlayerStrategy.Valid() {
		return fmt.Errorf("unknown player strategy %q", s.config.PlayerStrategy)
	}
	if !s.config.EnemyStrategy.Valid() {
		return fmt.Errorf("unknown enemy strategy %q", s.config.EnemyStrategy)
	}
	return s.config.Rules.Validate()
}

// Run plays the configured number of rounds. A given seed, rules and worker
// count always produce the same report counts.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	logger := s.config.Logger.WithPrefix("simulator")
	workers := min(s.config.Workers, s.config.Rounds)
	perWorker := s.config.Rounds / workers
	remainder := s.config.Rounds % workers

	logger.Info("Starting simulation",
		"rounds", s.config.Rounds,
		"workers", workers,
		"seed", s.config.Seed,
		"handSize", s.config.Rules.HandSize,
		"joker", s.config.Rules.IncludeJoker)

	start := time.Now()
	tallies := make([]*tally, workers)
	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		rounds := perWorker
		if w < remainder {
			rounds++
		}

		g.Go(func() error {
			t, err := s.runWorker(ctx, w, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			tallies[w] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := newReport(s.config, workers)
	for _, t := range tallies {
		report.add(t)
	}
	report.Elapsed = time.Since(start)

	logger.Info("Simulation complete",
		"rounds", report.Rounds,
		"playerWins", report.Outcomes[game.PlayerWin.String()],
		"enemyWins", report.Outcomes[game.EnemyWin.String()],
		"draws", report.Outcomes[game.Draw.String()],
		"elapsed", report.Elapsed)
	return report, nil
}

// shuffleCounter counts deck reshuffles published by a manager
type shuffleCounter struct {
	n int
}

func (c *shuffleCounter) OnEvent(event game.GameEvent) {
	if event.EventType() == game.EventTypeDeckShuffled {
		c.n++
	}
}

func (s *Simulator) runWorker(ctx context.Context, worker, rounds int) (*tally, error) {
	m, err := game.NewManager(randutil.Stream(s.config.Seed, worker), s.config.Rules)
	if err != nil {
		return nil, err
	}
	shuffles := &shuffleCounter{}
	m.Subscribe(shuffles)

	t := newTally()
	round := game.NewRound(m)
	for i := 0; i < rounds; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if err := round.Deal(); err != nil {
			return nil, err
		}
		if _, err := round.Redraw(hand.Player, s.config.PlayerStrategy.indices(m, hand.Player)); err != nil {
			return nil, err
		}
		if _, err := round.Redraw(hand.Enemy, s.config.EnemyStrategy.indices(m, hand.Enemy)); err != nil {
			return nil, err
		}
		result, err := round.Resolve()
		if err != nil {
			return nil, err
		}
		t.record(result)
		if err := round.End(); err != nil {
			return nil, err
		}
	}

	t.reshuffles = shuffles.n
	if t.rounds != rounds {
		return nil, errors.New("round count mismatch")
	}
	return t, nil
}
