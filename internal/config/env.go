package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig    = "ALFRESCO_FIXTURES_CONFIG"
	EnvServerURL = "ALFRESCO_FIXTURES_URL"
	EnvUser      = "ALFRESCO_FIXTURES_USER"
	EnvPassword  = "ALFRESCO_FIXTURES_PASSWORD"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // ALFRESCO_FIXTURES_CONFIG: override config file path
	ServerURL  string // ALFRESCO_FIXTURES_URL: server base URL
	Username   string // ALFRESCO_FIXTURES_USER: account name
	Password   string // ALFRESCO_FIXTURES_PASSWORD: account password
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		ServerURL:  os.Getenv(EnvServerURL),
		Username:   os.Getenv(EnvUser),
		Password:   os.Getenv(EnvPassword),
	}
}
