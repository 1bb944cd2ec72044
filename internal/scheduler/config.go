package scheduler

import (
	"time"

	appconfig "github.com/smallbiznis/keyforge/internal/config"
)

// Config controls how often registry gauges are refreshed.
type Config struct {
	RunInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
	}
}

func ProvideConfig(cfg appconfig.Config) Config {
	out := Config{
		RunInterval: time.Duration(cfg.StatsInterval) * time.Second,
	}
	return out.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = DefaultConfig().RunInterval
	}
	return c
}
