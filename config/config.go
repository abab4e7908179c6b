// Package config loads server configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            int `env:"PORT" envDefault:"8080"`
		ReadTimeout     int `env:"READ_TIMEOUT" envDefault:"15"`
		WriteTimeout    int `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int `env:"SHUTDOWN_TIMEOUT" envDefault:"30"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Path string `env:"PATH" envDefault:"attendance.db"`
	} `envPrefix:"DATABASE_"`
	Holiday struct {
		URL          string `env:"URL" envDefault:"https://holidays-jp.github.io/api/v1/date.json"`
		FetchTimeout int    `env:"FETCH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"HOLIDAY_"`
	Persist struct {
		DebounceSeconds int `env:"DEBOUNCE_SECONDS" envDefault:"2"`
	} `envPrefix:"PERSIST_"`
	Session struct {
		Dir string `env:"DIR" envDefault:"./sessions"`
	} `envPrefix:"SESSION_"`
}

// Load reads configuration from a .env file (if any) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment alone is a complete source.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
