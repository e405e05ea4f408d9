package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagServer     string
	flagUser       string
	flagDomain     string
	flagLedger     string
	flagRecord     string
	flagNoLedger   bool
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
var resolvedCfg *config.Config

// skipConfigCommands lists commands that must run without a loadable config.
var skipConfigCommands = map[string]bool{
	"alfresco-fixtures config init": true,
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alfresco-fixtures",
		Short: "Alfresco test fixture tool",
		Long: `Create and tear down Alfresco test fixtures: sites, folders, documents
and favorites. Every fixture created is recorded in a local ledger so
"teardown" can remove it again.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			return loadConfig(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "config file path")
	pf.StringVar(&flagServer, "server", "", "Alfresco server URL (overrides server_url)")
	pf.StringVar(&flagUser, "user", "", "user name (overrides username)")
	pf.StringVar(&flagDomain, "domain", "", "tenant network for sites (overrides domain)")
	pf.StringVar(&flagLedger, "ledger", "", "fixture ledger path (overrides ledger_path)")
	pf.StringVar(&flagRecord, "record", "", "record HTTP traffic to (or replay it from) this cassette")
	pf.BoolVar(&flagNoLedger, "no-ledger", false, "do not record created fixtures for teardown")
	pf.BoolVar(&flagJSON, "json", false, "output in JSON format")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newSiteCmd())
	cmd.AddCommand(newFavoriteCmd())
	cmd.AddCommand(newFolderCmd())
	cmd.AddCommand(newDocCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newNodeCmd())
	cmd.AddCommand(newTeardownCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// cliOverrides collects the persistent flags the user explicitly set.
func cliOverrides(cmd *cobra.Command) config.CLIOverrides {
	cli := config.CLIOverrides{ConfigPath: flagConfigPath}

	flags := cmd.Flags()

	if flags.Changed("server") {
		cli.ServerURL = &flagServer
	}

	if flags.Changed("user") {
		cli.Username = &flagUser
	}

	if flags.Changed("domain") {
		cli.Domain = &flagDomain
	}

	if flags.Changed("ledger") {
		cli.LedgerPath = &flagLedger
	}

	return cli
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and stores the result in resolvedCfg.
func loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Resolve(config.ReadEnvOverrides(), cliOverrides(cmd))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger writing to w. The config's log level
// is the baseline; --verbose and --quiet override it. Format "auto" picks
// text when w is a terminal and JSON otherwise.
func buildLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	format := "auto"

	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = cfg.LogFormat
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if format == "json" || (format == "auto" && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
