// Package config defines the service configuration and its defaults.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	// LogLevel: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat: json or console.
	LogFormat string `koanf:"log_format"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	PostgresDSN       string        `koanf:"postgres_dsn"`
	DBMaxOpenConns    int           `koanf:"db_max_open_conns"`
	DBMaxIdleConns    int           `koanf:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`
	MigrateOnStart    bool          `koanf:"migrate_on_start"`

	// Timezone is the reference location for calendar days.
	Timezone string `koanf:"timezone"`
	// SimulatedYear replaces the wall-clock year. 0 disables it.
	SimulatedYear int `koanf:"simulated_year"`

	DecadeNorm  int64 `koanf:"decade_norm"`
	PremiumRate int64 `koanf:"premium_rate"`

	RosterPath  string `koanf:"roster_path"`
	WatchRoster bool   `koanf:"watch_roster"`
	ShiftDays   int    `koanf:"shift_days"`

	AMQPURL       string        `koanf:"amqp_url"`
	MirrorQueue   string        `koanf:"mirror_queue"`
	OutboundQueue string        `koanf:"outbound_queue"`
	MirrorTries   uint          `koanf:"mirror_attempts"`
	MirrorBackoff time.Duration `koanf:"mirror_backoff"`
}

func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "json",
		Addr:              ":8080",
		DBMaxOpenConns:    20,
		DBMaxIdleConns:    10,
		DBConnMaxLifetime: 30 * time.Minute,
		MigrateOnStart:    true,
		Timezone:          "Europe/Moscow",
		SimulatedYear:     2025,
		DecadeNorm:        140,
		PremiumRate:       200,
		RosterPath:        "data/grafik.json",
		WatchRoster:       true,
		ShiftDays:         15,
		MirrorQueue:       "scans.mirror",
		OutboundQueue:     "chat.outbound",
		MirrorTries:       3,
		MirrorBackoff:     2 * time.Second,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.PostgresDSN) == "":
		return fmt.Errorf("%w: postgres_dsn must not be empty", ErrInvalidConfig)
	case c.SimulatedYear < 0:
		return fmt.Errorf("%w: simulated_year must not be negative", ErrInvalidConfig)
	case c.DecadeNorm < 0 || c.PremiumRate < 0:
		return fmt.Errorf("%w: decade_norm and premium_rate must not be negative", ErrInvalidConfig)
	case c.ShiftDays <= 0:
		return fmt.Errorf("%w: shift_days must be positive", ErrInvalidConfig)
	case c.MirrorTries == 0:
		return fmt.Errorf("%w: mirror_attempts must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
