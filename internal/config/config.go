// internal/config/config.go
//
// Process configuration.
//   - .env (if present) is loaded into the environment first.
//   - Variables are parsed into Config with defaults for local play.
//   - Derived values (log level, timezone, epoch) are validated here so main
//     can fail fast.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/countle/internal/daily"
)

// Config holds every setting read from the environment.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DBDriver       string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath         string        `env:"DB_PATH" envDefault:"data/countle.db"`
	DBURL          string        `env:"DB_URL"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"countle"`
	DailyEpoch     string        `env:"DAILY_EPOCH" envDefault:"2025-01-01"`
	Timezone       string        `env:"TIMEZONE" envDefault:"Local"`
	TimeTrialLimit time.Duration `env:"TIME_TRIAL_LIMIT" envDefault:"3m"`
	StoreHistory   int           `env:"STORE_HISTORY" envDefault:"0"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev_only_change_me"`
	PlayerCache    int           `env:"PLAYER_CACHE" envDefault:"10000"`
	OTelEnabled    bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OTelSample     float64       `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
	Environment    string        `env:"APP_ENV" envDefault:"development"`
	Version        string        `env:"APP_VERSION" envDefault:"dev"`
}

// Load reads .env and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Epoch(); err != nil {
		return err
	}
	switch strings.ToLower(c.DBDriver) {
	case "memory", "sqlite", "sqlite3":
	case "postgres", "postgresql", "mysql":
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL is required for DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TimeTrialLimit <= 0 {
		return fmt.Errorf("TIME_TRIAL_LIMIT must be positive, got %s", c.TimeTrialLimit)
	}
	if c.StoreHistory < 0 {
		return fmt.Errorf("STORE_HISTORY must not be negative")
	}
	if c.PlayerCache <= 0 {
		return fmt.Errorf("PLAYER_CACHE must be positive, got %d", c.PlayerCache)
	}
	if c.OTelSample < 0 || c.OTelSample > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0, 1], got %g", c.OTelSample)
	}
	return nil
}

// Level parses LOG_LEVEL.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Location resolves TIMEZONE; calendar days roll over at its midnight.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}

// Epoch parses DAILY_EPOCH, the date of puzzle #1.
func (c *Config) Epoch() (time.Time, error) {
	t, err := daily.ParseDateKey(c.DailyEpoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("DAILY_EPOCH: %w", err)
	}
	return t, nil
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	switch strings.ToLower(c.DBDriver) {
	case "memory":
		return ""
	case "sqlite", "sqlite3":
		return c.DBPath
	}
	return c.DBURL
}
