package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal errors with "did you mean?"
// suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// ResolveConfigPath picks the config file path (CLI > env > default) and
// expands "~" in it.
func ResolveConfigPath(env EnvOverrides, cli CLIOverrides) (string, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	return ExpandHome(cfgPath)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags.
// The returned Config has "~" expanded in its paths and is validated.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	// 1. Resolve config path: CLI > env > default
	expandedPath, err := ResolveConfigPath(env, cli)
	if err != nil {
		return nil, err
	}

	// 2. Load config file (defaults if no file exists)
	cfg, err := LoadOrDefault(expandedPath)
	if err != nil {
		return nil, err
	}

	// 3. Apply env overrides
	if env.ServerURL != "" {
		cfg.ServerURL = env.ServerURL
	}

	if env.Username != "" {
		cfg.Username = env.Username
	}

	if env.Password != "" {
		cfg.Password = env.Password
	}

	// 4. Apply CLI overrides (pointer fields: nil = not specified)
	if cli.ServerURL != nil {
		cfg.ServerURL = *cli.ServerURL
	}

	if cli.Username != nil {
		cfg.Username = *cli.Username
	}

	if cli.Domain != nil {
		cfg.Domain = *cli.Domain
	}

	if cli.LedgerPath != nil {
		cfg.LedgerPath = *cli.LedgerPath
	}

	if cfg.LedgerPath, err = ExpandHome(cfg.LedgerPath); err != nil {
		return nil, err
	}

	// 5. Validate the final result
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}
