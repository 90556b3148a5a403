package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper.
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("forgefetch")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("FORGEFETCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short env aliases for the knobs people actually tune.
	v.BindEnv("dirs.base", "FORGEFETCH_BASE_DIR")
	v.BindEnv("scryfall.mindelay", "FORGEFETCH_MIN_DELAY")
	v.BindEnv("scryfall.maxretries", "FORGEFETCH_MAX_RETRIES")
	v.BindEnv("naming.policy", "FORGEFETCH_NAMING_POLICY")
	v.BindEnv("log.level", "FORGEFETCH_LOG_LEVEL")

	def := DefaultConfig()
	v.SetDefault("scryfall.baseurl", def.Scryfall.BaseURL)
	v.SetDefault("scryfall.useragent", def.Scryfall.UserAgent)
	v.SetDefault("scryfall.timeout", def.Scryfall.Timeout)
	v.SetDefault("scryfall.mindelay", def.Scryfall.MinDelay)
	v.SetDefault("scryfall.maxretries", def.Scryfall.MaxRetries)
	v.SetDefault("scryfall.backoffbase", def.Scryfall.BackoffBase)
	v.SetDefault("scryfall.backoffjitter", def.Scryfall.BackoffJitter)
	v.SetDefault("scryfall.setpause", def.Scryfall.SetPause)
	v.SetDefault("dirs.base", def.Dirs.Base)
	v.SetDefault("dirs.cards", def.Dirs.Cards)
	v.SetDefault("dirs.singles", def.Dirs.Singles)
	v.SetDefault("dirs.tokens", def.Dirs.Tokens)
	v.SetDefault("naming.policy", def.Naming.Policy)
	v.SetDefault("naming.rotatesplit", def.Naming.RotateSplit)
	v.SetDefault("naming.fullborder", def.Naming.FullBorder)
	v.SetDefault("log.level", def.Log.Level)

	// The config file is optional; env vars and defaults carry a bare run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !strings.Contains(err.Error(), "no such file or directory") {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
