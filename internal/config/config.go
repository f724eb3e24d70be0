package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds all user-facing configuration for trivia-map.
type Config struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Oracle OracleConfig `toml:"oracle"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Host string `toml:"host" env:"TRIVIA_HOST"`
	Port int    `toml:"port" env:"TRIVIA_PORT"`
}

// DataConfig points at the boundary dataset. An empty path means the
// dataset compiled into the binary, which is a small sample of a dozen
// coarse country outlines. For a full world map set Boundaries to a
// Natural Earth admin-0 GeoJSON file (or a directory of them); its NAME
// and SUBREGION properties are read directly.
type DataConfig struct {
	Boundaries string `toml:"boundaries" env:"TRIVIA_BOUNDARIES"`
}

type OracleConfig struct {
	Provider  string        `toml:"provider" env:"TRIVIA_ORACLE_PROVIDER"`
	Model     string        `toml:"model" env:"TRIVIA_ORACLE_MODEL"`
	Timeout   time.Duration `toml:"timeout" env:"TRIVIA_ORACLE_TIMEOUT"`
	RateLimit float64       `toml:"rate_limit" env:"TRIVIA_ORACLE_RATE_LIMIT"`

	// Credentials only come from the environment.
	GeminiAPIKey    string `toml:"-" env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `toml:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `toml:"-" env:"OPENAI_API_KEY"`
}

// CacheConfig selects the exclusion set backend: "memory" or "duckdb".
type CacheConfig struct {
	Backend string `toml:"backend" env:"TRIVIA_CACHE_BACKEND"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 3001},
		Oracle: OracleConfig{Provider: "gemini", Model: "gemini-2.5-flash", RateLimit: 1.0},
		Cache:  CacheConfig{Backend: "memory"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a TOML config file and then applies environment overrides.
// If the file does not exist, built-in defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "duckdb":
	default:
		return fmt.Errorf("cache.backend must be \"memory\" or \"duckdb\", got %q", c.Cache.Backend)
	}
	switch c.Oracle.Provider {
	case "gemini", "anthropic", "openai":
	default:
		return fmt.Errorf("unknown oracle.provider %q", c.Oracle.Provider)
	}
	if c.Oracle.Timeout < 0 {
		return fmt.Errorf("oracle.timeout must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c *OracleConfig) APIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}
