package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
)

func newFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorite",
		Aliases: []string{"fav"},
		Short:   "Mark, check and unmark sites as the user's favorites",
	}

	cmd.AddCommand(newFavoriteOpCmd("set", "Mark a site as a favorite", "favorite",
		func(c *alfresco.Client) favoriteOp { return c.SetFavorite }))
	cmd.AddCommand(newFavoriteOpCmd("check", "Report whether a site is a favorite", "favorite",
		func(c *alfresco.Client) favoriteOp { return c.IsFavorite }))
	cmd.AddCommand(newFavoriteOpCmd("remove", "Remove a site from the favorites", "removed",
		func(c *alfresco.Client) favoriteOp { return c.RemoveFavorite }))

	return cmd
}

// favoriteOp is the shape shared by the three favorite operations.
type favoriteOp func(ctx context.Context, creds alfresco.Credentials, site string) (bool, error)

func newFavoriteOpCmd(use, short, field string, op func(*alfresco.Client) favoriteOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <site-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				ok, err := op(s.Client)(ctx, s.Creds, args[0])
				if err != nil {
					return fmt.Errorf("favorite %s %q: %w", use, args[0], err)
				}

				if flagJSON {
					return printJSON(cmd.OutOrStdout(), map[string]any{"site": args[0], field: ok})
				}

				fmt.Fprintln(cmd.OutOrStdout(), yesNo(ok))

				if !ok && use != "check" {
					warnf("favorite %s for %s had no effect\n", use, args[0])
				}

				return nil
			})
		},
	}
}
