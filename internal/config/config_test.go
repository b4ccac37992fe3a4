package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbattle/internal/game"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Game.HandSize)
	assert.False(t, cfg.Game.IncludeJoker)
	assert.True(t, cfg.Game.EnemyRedraw)
	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	idle, err := cfg.Server.IdleTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, idle)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokerbattle.hcl")
	src := `
game {
  hand_size     = 7
  include_joker = true
  seed          = 99
}

server {
  address         = ":9000"
  allowed_origins = ["http://localhost:3000"]
  reap_interval   = "10s"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7, cfg.Game.HandSize)
	assert.True(t, cfg.Game.IncludeJoker)
	assert.Equal(t, int64(99), cfg.Game.Seed)
	assert.True(t, cfg.Game.EnemyRedraw, "unset attributes keep defaults")

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 64, cfg.Server.MaxTables)

	reap, err := cfg.Server.ReapIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, reap)

	assert.Equal(t, game.Config{HandSize: 7, IncludeJoker: true}, cfg.Game.Rules())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `game { hand_size = }`},
		{"unknown attribute", `game { pot_limit = 5 }`},
		{"unknown block", `table "main" {}`},
		{"wrong type", `game { hand_size = "five" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero hand size", func(c *Config) { c.Game.HandSize = 0 }, true},
		{"largest hand size", func(c *Config) { c.Game.HandSize = game.MaxHandSize }, false},
		{"hand size too large", func(c *Config) { c.Game.HandSize = game.MaxHandSize + 1 }, true},
		{"empty address", func(c *Config) { c.Server.Address = "" }, true},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }, true},
		{"no tables allowed", func(c *Config) { c.Server.MaxTables = 0 }, true},
		{"bad idle timeout", func(c *Config) { c.Server.IdleTimeout = "soon" }, true},
		{"negative reap interval", func(c *Config) { c.Server.ReapInterval = "-1s" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
