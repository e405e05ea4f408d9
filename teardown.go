package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

func newTeardownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete every fixture recorded in the ledger",
		Long: `Delete the fixtures earlier commands created, newest first: documents,
then folders, then sites. Fixtures that are already gone from the server
are dropped from the ledger; failures stay recorded for the next run.`,
		Args: cobra.NoArgs,
		RunE: runTeardown,
	}

	cmd.Flags().String("site", "", "only tear down fixtures in this site")

	return cmd
}

// teardownJSONOutput is the JSON output schema for the teardown command.
type teardownJSONOutput struct {
	Deleted int `json:"deleted"`
	Gone    int `json:"gone"`
	Failed  int `json:"failed"`
}

func runTeardown(cmd *cobra.Command, _ []string) error {
	if flagNoLedger {
		return errors.New("teardown needs the ledger; drop --no-ledger")
	}

	site, err := cmd.Flags().GetString("site")
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	return withSession(ctx, true, func(s *Session) error {
		report, tdErr := s.ledger.Teardown(ctx, site, fixtureDeleter{s})

		if flagJSON {
			if err := printJSON(cmd.OutOrStdout(), teardownJSONOutput(report)); err != nil {
				return errors.Join(tdErr, err)
			}
		} else {
			okf("Deleted %d fixture(s)", report.Deleted)
			statusf(", %d already gone", report.Gone)

			if report.Failed > 0 {
				warnf(", %d failed", report.Failed)
			}

			statusf("\n")
		}

		return tdErr
	})
}

// fixtureDeleter deletes ledger fixtures through a session's client.
type fixtureDeleter struct {
	s *Session
}

// DeleteFixture deletes f by reference when one was recorded, by name
// otherwise. A server-side absence is reported as ledger.ErrGone.
func (d fixtureDeleter) DeleteFixture(ctx context.Context, f ledger.Fixture) error {
	c, creds := d.s.Client, d.s.Creds

	var err error

	switch {
	case f.Kind == ledger.KindSite:
		err = c.DeleteSite(ctx, creds, f.Domain, f.Site)
	case f.NodeRef != "":
		err = c.DeleteNode(ctx, creds, alfresco.NodeRef(f.NodeRef))
	case f.Kind == ledger.KindFolder:
		err = c.DeleteTree(ctx, creds, f.Site, f.Name)
	default:
		err = c.DeleteDocument(ctx, creds, f.Site, f.Name)
	}

	if errors.Is(err, alfresco.ErrNotFound) {
		return fmt.Errorf("%w: %w", ledger.ErrGone, err)
	}

	return err
}
