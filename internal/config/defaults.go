package config

import "time"

// Default values for configuration options. These are "layer 0" of the
// override chain.
const (
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
	defaultTimeout           = "60s"
	defaultTimeoutDuration   = 60 * time.Second
	defaultUploadConcurrency = 4
)

// DefaultConfig returns a Config populated with all default values.
// It is the starting point for TOML decoding, so unset keys keep their
// defaults, and the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		LoggingConfig: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
		NetworkConfig: NetworkConfig{
			Timeout: defaultTimeout,
		},
		FixturesConfig: FixturesConfig{
			LedgerPath:        DefaultLedgerPath(),
			UploadConcurrency: defaultUploadConcurrency,
		},
	}
}
