package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if resolvedCfg == nil {
		return errors.New("no configuration loaded")
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), resolvedCfg)
	}

	return config.RenderEffective(resolvedCfg, cmd.OutOrStdout())
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a config file for the server and user given with --server and
--user. An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if flagServer == "" || flagUser == "" {
		return errors.New("config init needs --server and --user")
	}

	path, err := config.ResolveConfigPath(config.ReadEnvOverrides(), cliOverrides(cmd))
	if err != nil {
		return err
	}

	if err := config.CreateConfig(path, flagServer, flagUser); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	okf("Wrote %s; set %s or add password to it\n", path, config.EnvPassword)

	return nil
}
