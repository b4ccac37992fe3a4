package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Option configures a Manager during creation.
type Option func(*managerConfig)

// managerConfig holds the optional collaborators of a Manager.
type managerConfig struct {
	logger *log.Logger
	clock  quartz.Clock
	bus    EventBus
}

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *log.Logger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithClock sets the clock used to timestamp events. Defaults to the real clock.
func WithClock(clock quartz.Clock) Option {
	return func(c *managerConfig) {
		c.clock = clock
	}
}

// WithEventBus publishes events on an existing bus instead of a private one.
func WithEventBus(bus EventBus) Option {
	return func(c *managerConfig) {
		c.bus = bus
	}
}

func newManagerConfig(opts []Option) *managerConfig {
	cfg := &managerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}
	return cfg
}
