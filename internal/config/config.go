// Package config implements TOML configuration loading, validation, and
// path resolution for alfresco-fixtures. It supports a four-layer override
// chain (defaults -> config file -> environment -> CLI flags).
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
// All keys are flat; the embedded structs only group related settings.
type Config struct {
	ServerConfig
	LoggingConfig
	NetworkConfig
	FixturesConfig
}

// ServerConfig identifies the Alfresco server and the account fixtures are
// created as. Domain is the tenant network; empty means the default one.
type ServerConfig struct {
	ServerURL string `toml:"server_url" json:"server_url"`
	Username  string `toml:"username"   json:"username"`
	Password  string `toml:"password"   json:"-"`
	Domain    string `toml:"domain"     json:"domain"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"  json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`
}

// NetworkConfig controls the HTTP client. Timeout bounds each request.
type NetworkConfig struct {
	Timeout string `toml:"timeout" json:"timeout"`
}

// FixturesConfig controls fixture bookkeeping and bulk operations.
type FixturesConfig struct {
	LedgerPath        string `toml:"ledger_path"        json:"ledger_path"`
	UploadConcurrency int    `toml:"upload_concurrency" json:"upload_concurrency"`
}

// TimeoutDuration returns the parsed request timeout. Validate guarantees
// the value parses; an unparsable value yields the default.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return defaultTimeoutDuration
	}

	return d
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	ServerURL  *string // --server flag
	Username   *string // --user flag
	Domain     *string // --domain flag
	LedgerPath *string // --ledger flag
}
