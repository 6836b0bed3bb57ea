// Package config loads process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Serve holds the settings for the demo server.
type Serve struct {
	Addr          string `env:"ARBOR_ADDR" envDefault:":8080"`
	RedisAddr     string `env:"ARBOR_REDIS_ADDR"`
	RedisPassword string `env:"ARBOR_REDIS_PASSWORD"`
	RedisDB       int    `env:"ARBOR_REDIS_DB" envDefault:"0"`
	SessionCookie string `env:"ARBOR_SESSION_COOKIE" envDefault:"ARBORSESSID"`
	LogLevel      string `env:"ARBOR_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
