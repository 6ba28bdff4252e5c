package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix maps SYNCPACK_LOCK_TIMEOUT=45s to lock_timeout, etc.
const envPrefix = "SYNCPACK_CFG_"

// FileName is the preferred per-root config file name.
const FileName = ".syncpack.toml"

// configFileNames are tried in order at the install root.
var configFileNames = []string{FileName, "syncpack.toml"}

// Load merges defaults, the install root's config file (if present),
// and environment overrides into a Config.
func Load(installRoot string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default configuration")
	}

	if path := findConfigFile(installRoot); path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config at %s", path)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(installRoot string) string {
	for _, name := range configFileNames {
		path := filepath.Join(installRoot, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func validate(cfg *Config) error {
	switch cfg.DefaultScope {
	case "global", "local":
	default:
		return errors.Newf(errors.ErrConfigValid, "default_scope must be global or local, got %q", cfg.DefaultScope)
	}
	if cfg.BackupRetention < 1 {
		return errors.Newf(errors.ErrConfigValid, "backup_retention must be at least 1, got %d", cfg.BackupRetention)
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return errors.Newf(errors.ErrConfigValid, "color must be auto, always, or never, got %q", cfg.Color)
	}
	return nil
}
