// internal/config/config.go
//
// Process configuration, read once at start-up from the environment
// (after godotenv has loaded any .env file).

package config

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/robalobadob/wheelyhard/internal/reveal"
)

// Config holds every tunable of the server.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Env          string `env:"NODE_ENV" envDefault:"development"`

	JWTSecret  string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	CookieName string `env:"COOKIE_NAME" envDefault:"wheelyhard_player"`

	ScryfallBaseURL   string        `env:"SCRYFALL_BASE_URL" envDefault:"https://api.scryfall.com"`
	ScryfallUserAgent string        `env:"SCRYFALL_USER_AGENT" envDefault:"wheelyhard/1.0"`
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// Game variants.
	SetFilter        []string `env:"SET_FILTER" envSeparator:","`
	SetFilterFile    string   `env:"SET_FILTER_FILE"`
	ShowSuggestions  bool     `env:"SHOW_SUGGESTIONS" envDefault:"true"`
	SuggestMinLength int      `env:"SUGGEST_MIN_LENGTH" envDefault:"3"`
	MaxReveal        int      `env:"MAX_REVEAL" envDefault:"10"`
	MaskColor        string   `env:"MASK_COLOR" envDefault:"#000000"`

	CacheDSN           string        `env:"CACHE_DSN" envDefault:"./data/cache.db"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"2h"`
}

// Load parses the environment into a validated Config.
func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks cross-field and range constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxReveal < 1 {
		errs = append(errs, fmt.Errorf("MAX_REVEAL must be >= 1, got %d", c.MaxReveal))
	}
	if c.SuggestMinLength < 0 {
		errs = append(errs, fmt.Errorf("SUGGEST_MIN_LENGTH must be >= 0, got %d", c.SuggestMinLength))
	}
	if _, err := reveal.ParseColor(c.MaskColor); err != nil {
		errs = append(errs, fmt.Errorf("MASK_COLOR: %w", err))
	}
	if c.Production() && c.JWTSecret == "dev_secret_change_me" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c *Config) Production() bool { return c.Env == "production" }

// Mask returns the parsed mask color. Validate must have succeeded.
func (c *Config) Mask() color.Color {
	m, _ := reveal.ParseColor(c.MaskColor)
	return m
}
