// Package testutil provides shared environment helpers for integration
// tests that run against a live Alfresco server. It depends only on stdlib
// so any test package can import it.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by integration tests.
const (
	EnvServerURL      = "ALFRESCO_FIXTURES_URL"
	EnvUser           = "ALFRESCO_FIXTURES_USER"
	EnvPassword       = "ALFRESCO_FIXTURES_PASSWORD"
	EnvAllowedServers = "ALFRESCO_FIXTURES_ALLOWED_SERVERS"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// ServerEnv holds the connection settings for a live test server.
type ServerEnv struct {
	URL      string
	User     string
	Password string
}

// LookupServerEnv returns the live server settings, or false when any of
// them is unset so callers can skip.
func LookupServerEnv() (ServerEnv, bool) {
	env := ServerEnv{
		URL:      os.Getenv(EnvServerURL),
		User:     os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
	}

	return env, env.URL != "" && env.User != "" && env.Password != ""
}

// ValidateAllowlist crashes the process if ALFRESCO_FIXTURES_ALLOWED_SERVERS
// is not set or does not list serverURL. Integration tests create and
// delete sites, so they must never run against an unlisted server.
func ValidateAllowlist(serverURL string) {
	allowlist := os.Getenv(EnvAllowedServers)
	if allowlist == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", EnvAllowedServers)
		fmt.Fprintln(os.Stderr, "Set it in .env or as an environment variable.")
		fmt.Fprintf(os.Stderr, "Example: %s=http://localhost:8080\n", EnvAllowedServers)
		os.Exit(1)
	}

	want := strings.TrimRight(serverURL, "/")

	for _, a := range strings.Split(allowlist, ",") {
		if strings.TrimRight(strings.TrimSpace(a), "/") == want {
			return
		}
	}

	fmt.Fprintf(os.Stderr, "FATAL: %s=%q is not in %s=%q\n", EnvServerURL, serverURL, EnvAllowedServers, allowlist)
	os.Exit(1)
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
