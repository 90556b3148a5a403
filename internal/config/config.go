package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// This file defines the configuration structures used by viper_config.go.
// The actual loading is handled by viper in viper_config.go.

// Config is the full run configuration. It is built once at startup and
// passed into the client and orchestrator constructors; nothing reads it
// through package-level state.
type Config struct {
	Scryfall ScryfallSettings `yaml:"scryfall" mapstructure:"scryfall"`
	Dirs     DirSettings      `yaml:"dirs" mapstructure:"dirs"`
	Naming   NamingSettings   `yaml:"naming" mapstructure:"naming"`
	Log      LogSettings      `yaml:"log" mapstructure:"log"`
}

// ScryfallSettings is the pacing and retry profile of the API client.
type ScryfallSettings struct {
	BaseURL       string        `yaml:"baseURL" mapstructure:"baseurl"`
	UserAgent     string        `yaml:"userAgent" mapstructure:"useragent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MinDelay      time.Duration `yaml:"minDelay" mapstructure:"mindelay"`
	MaxRetries    int           `yaml:"maxRetries" mapstructure:"maxretries"`
	BackoffBase   float64       `yaml:"backoffBase" mapstructure:"backoffbase"`
	BackoffJitter float64       `yaml:"backoffJitter" mapstructure:"backoffjitter"`
	SetPause      time.Duration `yaml:"setPause" mapstructure:"setpause"`
}

// DirSettings is the output layout. Cards, Singles and Tokens are siblings
// under Base; the audit manifest must live at the root of Base.
type DirSettings struct {
	Base    string `yaml:"base" mapstructure:"base"`
	Cards   string `yaml:"cards" mapstructure:"cards"`
	Singles string `yaml:"singles" mapstructure:"singles"`
	Tokens  string `yaml:"tokens" mapstructure:"tokens"`
}

// NamingSettings selects the default naming policy and split-card handling.
type NamingSettings struct {
	// Policy is "oracle" or "printed". The rev-print-name workflow forces
	// "printed" regardless of this default.
	Policy string `yaml:"policy" mapstructure:"policy"`
	// RotateSplit rotates landscape split/aftermath images 90 degrees so
	// the combined image is stored upright.
	RotateSplit bool `yaml:"rotateSplit" mapstructure:"rotatesplit"`
	// FullBorder appends the ".fullborder" stem infix Forge expects.
	FullBorder bool `yaml:"fullBorder" mapstructure:"fullborder"`
}

type LogSettings struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the conservative default profile: one request in
// flight, 200ms spacing, six attempts with exponential backoff.
func DefaultConfig() *Config {
	return &Config{
		Scryfall: ScryfallSettings{
			BaseURL:       "https://api.scryfall.com",
			UserAgent:     "forgefetch/1.1",
			Timeout:       30 * time.Second,
			MinDelay:      200 * time.Millisecond,
			MaxRetries:    6,
			BackoffBase:   1.2,
			BackoffJitter: 0.35,
			SetPause:      1500 * time.Millisecond,
		},
		Dirs: DirSettings{
			Base:    ".",
			Cards:   "Cards",
			Singles: "Singles",
			Tokens:  "Tokens",
		},
		Naming: NamingSettings{
			Policy:      "oracle",
			RotateSplit: false,
			FullBorder:  true,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// CardsDir returns the Cards directory under the base.
func (c *Config) CardsDir() string { return filepath.Join(c.Dirs.Base, c.Dirs.Cards) }

// SinglesDir returns the Singles directory under the base.
func (c *Config) SinglesDir() string { return filepath.Join(c.Dirs.Base, c.Dirs.Singles) }

// TokensDir returns the Tokens directory under the base.
func (c *Config) TokensDir() string { return filepath.Join(c.Dirs.Base, c.Dirs.Tokens) }

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Scryfall.BaseURL == "" {
		return fmt.Errorf("scryfall.baseURL must be set")
	}
	if c.Scryfall.MaxRetries < 1 {
		return fmt.Errorf("scryfall.maxRetries must be at least 1")
	}
	if c.Scryfall.MinDelay < 0 {
		return fmt.Errorf("scryfall.minDelay cannot be negative")
	}
	if c.Scryfall.BackoffBase < 1 {
		return fmt.Errorf("scryfall.backoffBase must be at least 1")
	}
	if c.Dirs.Base == "" {
		return fmt.Errorf("dirs.base must be set")
	}
	switch c.Naming.Policy {
	case "oracle", "printed":
	default:
		return fmt.Errorf("naming.policy must be %q or %q, got %q", "oracle", "printed", c.Naming.Policy)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
