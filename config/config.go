// Package config loads the lock pool's tunables from the JSON
// configuration file named in spec.md §6.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/sheetcore/reactive-sheets/internal/domain/lockpool"
)

// Config is the server's startup configuration.
type Config struct {
	IntervalTime          uint64  `mapstructure:"interval_time"`
	Min                   uint32  `mapstructure:"min"`
	Max                   uint32  `mapstructure:"max"`
	ExpansionThreshold    float64 `mapstructure:"expansion_threshold"`
	ExpansionMultiplier   float64 `mapstructure:"expansion_multiplier"`
	ContractionThreshold  float64 `mapstructure:"contraction_threshold"`
	ContractionMultiplier float64 `mapstructure:"contraction_multiplier"`

	ListenAddr string `mapstructure:"listen_addr"`
}

// defaults applied when a field is absent from the config file, so a
// minimal config.json can still start the server.
var defaults = map[string]any{
	"interval_time":          5,
	"min":                    16,
	"max":                    4096,
	"expansion_threshold":    0.5,
	"expansion_multiplier":   2.0,
	"contraction_threshold":  0.1,
	"contraction_multiplier": 0.5,
	"listen_addr":            ":4040",
}

// Load reads path (a JSON file) via viper, applying defaults for any
// field the file omits.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// LockPoolConfig converts the loaded configuration into a lockpool.Config.
func (c *Config) LockPoolConfig() lockpool.Config {
	return lockpool.Config{
		Interval:              time.Duration(c.IntervalTime) * time.Second,
		Min:                   int(c.Min),
		Max:                   int(c.Max),
		ExpansionThreshold:    c.ExpansionThreshold,
		ExpansionMultiplier:   c.ExpansionMultiplier,
		ContractionThreshold:  c.ContractionThreshold,
		ContractionMultiplier: c.ContractionMultiplier,
	}
}
