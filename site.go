package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

func newSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Create, inspect and delete sites",
	}

	cmd.AddCommand(newSiteCreateCmd())
	cmd.AddCommand(newSiteDeleteCmd())
	cmd.AddCommand(newSiteExistsCmd())
	cmd.AddCommand(newSiteListCmd())
	cmd.AddCommand(newSiteRefCmd())

	return cmd
}

func newSiteCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <site-id>",
		Short: "Create a site in the configured domain",
		Args:  cobra.ExactArgs(1),
		RunE:  runSiteCreate,
	}

	cmd.Flags().String("description", "", "site description")
	cmd.Flags().String("visibility", string(alfresco.VisibilityPublic), "public, moderated or private")
	cmd.Flags().Bool("unique", false, "append a random suffix to the site id")

	return cmd
}

// siteJSONOutput is the JSON output schema for site create.
type siteJSONOutput struct {
	ID         string `json:"id"`
	GUID       string `json:"guid"`
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
}

func runSiteCreate(cmd *cobra.Command, args []string) error {
	description, err := cmd.Flags().GetString("description")
	if err != nil {
		return err
	}

	visFlag, err := cmd.Flags().GetString("visibility")
	if err != nil {
		return err
	}

	visibility, ok := alfresco.ParseVisibility(visFlag)
	if !ok {
		return fmt.Errorf("invalid --visibility %q: must be public, moderated or private", visFlag)
	}

	unique, err := cmd.Flags().GetBool("unique")
	if err != nil {
		return err
	}

	siteID := fixtureName(args[0], unique)
	ctx := cmd.Context()

	return withSession(ctx, true, func(s *Session) error {
		site, err := s.Client.CreateSite(ctx, s.Creds, s.Domain, siteID, description, visibility)
		if err != nil {
			return fmt.Errorf("creating site %q: %w", siteID, err)
		}

		s.Record(ctx, ledger.Fixture{
			Kind:    ledger.KindSite,
			Site:    site.ID,
			Name:    site.ID,
			NodeRef: site.GUID.String(),
		})

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), siteJSONOutput{
				ID:         site.ID,
				GUID:       site.GUID.String(),
				Title:      site.Title,
				Visibility: string(site.Visibility),
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), site.ID)
		okf("Created site %s (%s)\n", site.ID, site.GUID)

		return nil
	})
}

func newSiteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <site-id>",
		Short: "Delete a site and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				if err := s.Client.DeleteSite(ctx, s.Creds, s.Domain, args[0]); err != nil {
					return fmt.Errorf("deleting site %q: %w", args[0], err)
				}

				okf("Deleted site %s\n", args[0])

				return nil
			})
		},
	}
}

func newSiteExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <site-id>",
		Short: "Report whether a site exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				exists, err := s.Client.SiteExists(ctx, s.Creds, args[0])
				if err != nil {
					return fmt.Errorf("checking site %q: %w", args[0], err)
				}

				if flagJSON {
					return printJSON(cmd.OutOrStdout(), map[string]any{"site": args[0], "exists": exists})
				}

				fmt.Fprintln(cmd.OutOrStdout(), yesNo(exists))

				return nil
			})
		},
	}
}

// siteListJSONItem is the JSON output schema for one row of site list.
type siteListJSONItem struct {
	ShortName string `json:"short_name"`
	Title     string `json:"title"`
}

func newSiteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the sites visible to the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				sites, err := s.Client.ListSites(ctx, s.Creds)
				if err != nil {
					return fmt.Errorf("listing sites: %w", err)
				}

				if flagJSON {
					out := make([]siteListJSONItem, 0, len(sites))
					for _, site := range sites {
						out = append(out, siteListJSONItem{ShortName: site.ShortName, Title: site.Title})
					}

					return printJSON(cmd.OutOrStdout(), out)
				}

				rows := make([][]string, 0, len(sites))
				for _, site := range sites {
					rows = append(rows, []string{site.ShortName, site.Title})
				}

				printTable(cmd.OutOrStdout(), []string{"SITE", "TITLE"}, rows)

				return nil
			})
		},
	}
}

func newSiteRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ref <site-id>",
		Short: "Print a site's node reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				ref, err := s.Client.RequireSiteRef(ctx, s.Creds, args[0])
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), ref)

				return nil
			})
		},
	}
}
