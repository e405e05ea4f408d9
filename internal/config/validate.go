package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validation range constants.
const (
	minTimeout           = 1 * time.Second
	minUploadConcurrency = 1
	maxUploadConcurrency = 32
)

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"auto": true, "text": true, "json": true}
)

// Validate checks all configuration values and returns all errors found,
// so users can fix every issue in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateServer(&cfg.ServerConfig)...)
	errs = append(errs, validateLogging(&cfg.LoggingConfig)...)
	errs = append(errs, validateNetwork(&cfg.NetworkConfig)...)
	errs = append(errs, validateFixtures(&cfg.FixturesConfig)...)

	return errors.Join(errs...)
}

// ValidateConnection checks that everything needed to talk to a server is
// present. Commands that make requests call it after Resolve; "config show"
// does not.
func ValidateConnection(cfg *Config) error {
	var errs []error

	if cfg.ServerURL == "" {
		errs = append(errs, fmt.Errorf("server_url: must be set (or %s)", EnvServerURL))
	}

	if cfg.Username == "" {
		errs = append(errs, fmt.Errorf("username: must be set (or %s)", EnvUser))
	}

	if cfg.Password == "" {
		errs = append(errs, fmt.Errorf("password: must be set (or %s)", EnvPassword))
	}

	return errors.Join(errs...)
}

func validateServer(s *ServerConfig) []error {
	if s.ServerURL == "" {
		return nil
	}

	u, err := url.Parse(s.ServerURL)
	if err != nil {
		return []error{fmt.Errorf("server_url: %w", err)}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return []error{fmt.Errorf("server_url: scheme must be http or https, got %q", u.Scheme)}
	}

	if u.Host == "" {
		return []error{fmt.Errorf("server_url: missing host in %q", s.ServerURL)}
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", l.LogLevel))
	}

	if !validLogFormats[l.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format: must be one of auto, text, json; got %q", l.LogFormat))
	}

	return errs
}

func validateNetwork(n *NetworkConfig) []error {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil {
		return []error{fmt.Errorf("timeout: invalid duration %q: %w", n.Timeout, err)}
	}

	if d < minTimeout {
		return []error{fmt.Errorf("timeout: must be at least %s, got %s", minTimeout, d)}
	}

	return nil
}

func validateFixtures(f *FixturesConfig) []error {
	var errs []error

	if f.UploadConcurrency < minUploadConcurrency || f.UploadConcurrency > maxUploadConcurrency {
		errs = append(errs, fmt.Errorf("upload_concurrency: must be between %d and %d, got %d",
			minUploadConcurrency, maxUploadConcurrency, f.UploadConcurrency))
	}

	if f.LedgerPath == "" {
		errs = append(errs, errors.New("ledger_path: must not be empty"))
	}

	return errs
}
