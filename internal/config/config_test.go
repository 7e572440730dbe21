package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":5175", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/countle.db", cfg.DSN())
	assert.Equal(t, 3*time.Minute, cfg.TimeTrialLimit)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, 1.0, cfg.OTelSample)
	assert.Equal(t, 10000, cfg.PlayerCache)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "dev", cfg.Version)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	epoch, err := cfg.Epoch()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), epoch)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://u:p@localhost/countle?sslmode=disable")
	t.Setenv("TIMEZONE", "Europe/Dublin")
	t.Setenv("TIME_TRIAL_LIMIT", "90s")
	t.Setenv("STORE_HISTORY", "50")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.1")
	t.Setenv("PLAYER_CACHE", "500")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_VERSION", "1.4.0")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "postgres://u:p@localhost/countle?sslmode=disable", cfg.DSN())
	assert.Equal(t, 90*time.Second, cfg.TimeTrialLimit)
	assert.Equal(t, 50, cfg.StoreHistory)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, 0.1, cfg.OTelSample)
	assert.Equal(t, 500, cfg.PlayerCache)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.4.0", cfg.Version)

	lvl, _ := cfg.Level()
	assert.Equal(t, zerolog.DebugLevel, lvl)
	loc, _ := cfg.Location()
	assert.Equal(t, "Europe/Dublin", loc.String())
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"level":       {"LOG_LEVEL": "loud"},
		"timezone":    {"TIMEZONE": "Mars/Olympus"},
		"epoch":       {"DAILY_EPOCH": "01/01/2025"},
		"driver":      {"DB_DRIVER": "oracle"},
		"missing url": {"DB_DRIVER": "mysql"},
		"limit":       {"TIME_TRIAL_LIMIT": "0s"},
		"history":     {"STORE_HISTORY": "-1"},
		"duration":    {"TIME_TRIAL_LIMIT": "soon"},
		"cache":       {"PLAYER_CACHE": "0"},
		"sample":      {"OTEL_SAMPLE_RATIO": "1.5"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TIMEZONE", "UTC")
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
