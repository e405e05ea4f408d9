package config

import (
	"fmt"
	"io"
)

// maskedPassword replaces the password in rendered output.
const maskedPassword = "********"

// RenderEffective writes the resolved configuration as a human-readable
// summary to w. The password is never written.
func RenderEffective(cfg *Config, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n\n")

	password := ""
	if cfg.Password != "" {
		password = maskedPassword
	}

	ew.printf("server_url         = %q\n", cfg.ServerURL)
	ew.printf("username           = %q\n", cfg.Username)
	ew.printf("password           = %q\n", password)
	ew.printf("domain             = %q\n", cfg.Domain)
	ew.printf("\n")
	ew.printf("log_level          = %q\n", cfg.LogLevel)
	ew.printf("log_format         = %q\n", cfg.LogFormat)
	ew.printf("timeout            = %q\n", cfg.Timeout)
	ew.printf("\n")
	ew.printf("ledger_path        = %q\n", cfg.LedgerPath)
	ew.printf("upload_concurrency = %d\n", cfg.UploadConcurrency)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
