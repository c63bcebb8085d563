package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 0.01, cfg.Builder.DefaultScore)
	assert.Equal(t, 0.25, cfg.Builder.ThemeBoost)
	assert.False(t, cfg.Builder.RequireFullDeck)
	assert.False(t, cfg.Inventory.Strict)
	assert.Equal(t, "2s", cfg.Watch.MinInterval)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "negative default score",
			mutate:  func(c *Config) { c.Builder.DefaultScore = -0.1 },
			wantErr: true,
		},
		{
			name:    "negative theme boost",
			mutate:  func(c *Config) { c.Builder.ThemeBoost = -1 },
			wantErr: true,
		},
		{
			name:    "negative type quota",
			mutate:  func(c *Config) { c.Builder.TypeQuotas = map[string]int{"Creature": -5} },
			wantErr: true,
		},
		{
			name:    "bad watch interval",
			mutate:  func(c *Config) { c.Watch.MinInterval = "soon" },
			wantErr: true,
		},
		{
			name:    "quotas valid",
			mutate:  func(c *Config) { c.Builder.TypeQuotas = map[string]int{"Creature": 35, "Land": 38} },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
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

func TestGetWatchMinInterval(t *testing.T) {
	cfg := DefaultConfig()
	d, err := cfg.GetWatchMinInterval()
	require.NoError(t, err)
	assert.Equal(t, "2s", d.String())
}

func TestGetWatchMinInterval_UnsetUsesDefault(t *testing.T) {
	// A hand-written config file without a [watch] section leaves the
	// interval empty.
	cfg := &Config{}
	d, err := cfg.GetWatchMinInterval()
	require.NoError(t, err)
	assert.Equal(t, "2s", d.String())

	assert.NoError(t, cfg.Validate())
}
