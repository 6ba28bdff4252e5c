// Package config loads syncpack's runtime configuration: built-in
// defaults, an optional per-root TOML file, and SYNCPACK_* environment
// overrides, merged in that order.
package config

import (
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the merged runtime configuration.
type Config struct {
	// LockTimeout bounds waiting for another syncpack process. Clamped
	// to [5s, 300s] at the lock layer.
	LockTimeout time.Duration `koanf:"lock_timeout" toml:"lock_timeout"`

	// BackupRetention is how many backup run directories to keep.
	BackupRetention int `koanf:"backup_retention" toml:"backup_retention"`

	// Providers are the integrations reconciled by default when the
	// command line names none.
	Providers []string `koanf:"providers" toml:"providers"`

	// DefaultScope is the delivery scope used when none is given.
	DefaultScope string `koanf:"default_scope" toml:"default_scope"`

	// Unattended disables all interactive prompting; conflicts become
	// blocked operations instead of merge sessions.
	Unattended bool `koanf:"unattended" toml:"unattended"`

	// Color forces output coloring on or off; "auto" detects the
	// terminal.
	Color string `koanf:"color" toml:"color"`
}

// defaults returns the built-in configuration as a merge base.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"lock_timeout":     "30s",
		"backup_retention": 5,
		"providers":        []string{},
		"default_scope":    "global",
		"unattended":       false,
		"color":            "auto",
	}
}

// DefaultTOML renders the default configuration as a TOML document,
// used by the genconfig command. Durations stay in their string form so
// the output round-trips through the loader.
func DefaultTOML() (string, error) {
	out, err := toml.Marshal(defaults())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
