// Package config loads cache settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IvanBrykalov/campaigncache/cache"
	"github.com/IvanBrykalov/campaigncache/policy"
	"github.com/IvanBrykalov/campaigncache/policy/oldest"
	"github.com/IvanBrykalov/campaigncache/policy/positional"
	"github.com/caarlos0/env/v11"
)

// Config describes a cache deployment.
type Config struct {
	Shards   int           `env:"CAMPAIGNCACHE_SHARDS"   envDefault:"10"`
	TTL      time.Duration `env:"CAMPAIGNCACHE_TTL"      envDefault:"1h"`
	Capacity int           `env:"CAMPAIGNCACHE_CAPACITY" envDefault:"1000"`
	// Dir defaults to <os.TempDir()>/campaigncache when unset.
	Dir string `env:"CAMPAIGNCACHE_DIR"`
	// Policy names the forced-eviction order: "oldest" or "positional".
	Policy string `env:"CAMPAIGNCACHE_POLICY" envDefault:"oldest"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = filepath.Join(os.TempDir(), "campaigncache")
	}
	if _, err := policyByName(cfg.Policy); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts cfg into cache options. Logger, Metrics and Clock are
// left for the caller to set.
func (cfg Config) Options() (cache.Options, error) {
	pol, err := policyByName(cfg.Policy)
	if err != nil {
		return cache.Options{}, err
	}
	return cache.Options{
		Shards:   cfg.Shards,
		TTL:      cfg.TTL,
		Capacity: cfg.Capacity,
		Dir:      cfg.Dir,
		Policy:   pol,
	}, nil
}

func policyByName(name string) (policy.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "oldest":
		return oldest.New(), nil
	case "positional":
		return positional.New(), nil
	default:
		return nil, fmt.Errorf("unknown eviction policy %q (use oldest or positional)", name)
	}
}
