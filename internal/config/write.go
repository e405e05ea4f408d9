package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// The config file may hold a password, so it is owner-only.
const (
	configFilePermissions = 0o600
	configDirPermissions  = 0o700
)

// ErrConfigExists is returned by CreateConfig when the file is already there.
var ErrConfigExists = errors.New("config file already exists")

// configTemplate is the config file written by "config init". Every
// optional setting is present as a commented-out default.
const configTemplate = `# alfresco-fixtures configuration

# Alfresco server base URL, scheme://host[:port]
server_url = %s

# Account fixtures are created as. The password may be left out here and
# supplied through ALFRESCO_FIXTURES_PASSWORD instead.
username = %s
# password = ""

# Tenant network (domain) for site creation; empty means the default network.
# domain = ""

# Log verbosity: debug, info, warn, error
# log_level = "info"

# Log format: auto (text on a terminal, JSON otherwise), text, json
# log_format = "auto"

# Per-request timeout
# timeout = "60s"

# Fixture ledger used by "teardown"
# ledger_path = "~/.local/share/alfresco-fixtures/fixtures.db"

# Files sent in parallel by "upload"
# upload_concurrency = 4
`

// CreateConfig writes a fresh config file for serverURL and username.
// An existing file is never overwritten.
func CreateConfig(path, serverURL, username string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	slog.Info("creating config file",
		"path", path,
		"server_url", serverURL,
		"username", username,
	)

	content := fmt.Sprintf(configTemplate, strconv.Quote(serverURL), strconv.Quote(username))

	return atomicWriteFile(path, []byte(content))
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
