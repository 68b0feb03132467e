// Package config loads the backend's configuration, per spec.md §6.
// The teacher loads its (much larger) configuration from JSON
// (internal/config/config.go); this backend's configuration surface
// is two mandatory options plus one optional list, so it
// is expressed as TOML via github.com/BurntSushi/toml, matching the
// config format the rest of the example corpus reaches for (kind's
// own config loader uses the same library).
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the backend's configuration, per spec.md §6.
type Config struct {
	// Directory is base_dir: the filesystem root under which entries
	// are stored. Required; empty is a startup error.
	Directory string `toml:"directory"`

	// Suffix is the backend's single configured suffix DN (spec.md §3).
	Suffix string `toml:"suffix"`

	// DefaultReferrals is returned by referral-probe when no entry on
	// the path to the target exists (spec.md §4.4).
	DefaultReferrals []string `toml:"default_referrals"`
}

// Load reads and parses a TOML config file at path.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate enforces the fatal startup errors: a missing directory
// option or a missing suffix option aborts backend open.
func (c Config) Validate() error {
	if c.Directory == "" {
		return fmt.Errorf("config: %q is required", "directory")
	}
	if c.Suffix == "" {
		return fmt.Errorf("config: %q is required", "suffix")
	}
	return nil
}
