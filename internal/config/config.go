// Package config loads skyscout settings from an optional YAML file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// PathEnv names the environment variable holding the config file path
const PathEnv = "SKYSCOUT_CONFIG"

// ErrInvalid matches every validation failure
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Jaeger    string          `yaml:"jaeger" env:"JAEGER"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Places    PlacesConfig    `yaml:"places"`
	Fares     FaresConfig     `yaml:"fares"`
	Typeahead TypeaheadConfig `yaml:"typeahead"`
	Deals     DealsConfig     `yaml:"deals"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"warn"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

type PlacesConfig struct {
	BaseURL string `yaml:"base_url" env:"PLACES_BASE_URL" env-default:"https://autocomplete.travelpayouts.com"`
	Locale  string `yaml:"locale" env:"PLACES_LOCALE" env-default:"en"`
}

type FaresConfig struct {
	BaseURL  string `yaml:"base_url" env:"FARES_BASE_URL" env-default:"http://localhost:5000"`
	Currency string `yaml:"currency" env:"FARES_CURRENCY" env-default:"inr"`
}

type TypeaheadConfig struct {
	Debounce  time.Duration `yaml:"debounce" env:"TYPEAHEAD_DEBOUNCE" env-default:"500ms"`
	MinLength int           `yaml:"min_length" env:"TYPEAHEAD_MIN_LENGTH" env-default:"2"`
}

type DealsConfig struct {
	Origin      string `yaml:"origin" env:"DEALS_ORIGIN" env-default:"DEL"`
	Concurrency int    `yaml:"concurrency" env:"DEALS_CONCURRENCY" env-default:"0"`
}

type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"90s"`
	Disabled bool          `yaml:"disabled" env:"CACHE_DISABLED" env-default:"false"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

// Load reads .env (if present), then the YAML file at path (or the one named
// by SKYSCOUT_CONFIG), then the environment. An empty path without
// SKYSCOUT_CONFIG means environment and defaults only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	if path == "" {
		path = os.Getenv(PathEnv)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	switch {
	case c.Places.BaseURL == "":
		return fmt.Errorf("%w: places base URL is empty", ErrInvalid)
	case c.Fares.BaseURL == "":
		return fmt.Errorf("%w: fares base URL is empty", ErrInvalid)
	case c.HTTP.Timeout <= 0:
		return fmt.Errorf("%w: http timeout must be positive, got %s", ErrInvalid, c.HTTP.Timeout)
	case c.Typeahead.Debounce <= 0:
		return fmt.Errorf("%w: typeahead debounce must be positive, got %s", ErrInvalid, c.Typeahead.Debounce)
	case c.Typeahead.MinLength <= 0:
		return fmt.Errorf("%w: typeahead min length must be positive, got %d", ErrInvalid, c.Typeahead.MinLength)
	case c.Deals.Concurrency < 0:
		return fmt.Errorf("%w: deals concurrency must not be negative, got %d", ErrInvalid, c.Deals.Concurrency)
	case c.Cache.TTL < 0:
		return fmt.Errorf("%w: cache ttl must not be negative, got %s", ErrInvalid, c.Cache.TTL)
	}
	return nil
}

// CacheEnabled reports whether lookups should be cached at all
func (c *Config) CacheEnabled() bool {
	return !c.Cache.Disabled && c.Cache.TTL > 0
}

// UseRedis reports whether the shared Redis cache is configured
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}
