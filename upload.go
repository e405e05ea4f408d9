package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <site-id> <dir>",
		Short: "Upload every file in a local directory as documents",
		Long: `Upload every regular file directly inside dir to the site's document
library, or to an existing folder with --folder. Sub-directories are not
descended into. Files are sent in parallel, bounded by upload_concurrency.`,
		Args: cobra.ExactArgs(2),
		RunE: runUpload,
	}

	cmd.Flags().String("folder", "", "upload into this existing folder")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	folder, err := cmd.Flags().GetString("folder")
	if err != nil {
		return err
	}

	site, dir := args[0], args[1]
	ctx := cmd.Context()

	return withSession(ctx, true, func(s *Session) error {
		var nodes []*alfresco.Node

		if folder == "" {
			nodes, err = s.Client.UploadFiles(ctx, s.Creds, site, dir)
		} else {
			nodes, err = s.Client.UploadFilesInFolder(ctx, s.Creds, site, dir, folder)
		}

		// Files sent before a failure exist on the server; record them too.
		for _, n := range nodes {
			if n == nil {
				continue
			}

			s.Record(ctx, ledger.Fixture{
				Kind:    ledger.KindDocument,
				Site:    site,
				Name:    n.Name,
				NodeRef: n.Ref.String(),
			})
		}

		if err != nil {
			return fmt.Errorf("uploading %s: %w", dir, err)
		}

		if flagJSON {
			out := make([]nodeJSONOutput, 0, len(nodes))
			for _, n := range nodes {
				out = append(out, toNodeJSON(n))
			}

			return printJSON(cmd.OutOrStdout(), out)
		}

		rows := make([][]string, 0, len(nodes))
		for _, n := range nodes {
			rows = append(rows, []string{n.Name, formatSize(n.Size), n.MimeType, n.Ref.String()})
		}

		printTable(cmd.OutOrStdout(), []string{"NAME", "SIZE", "TYPE", "REF"}, rows)
		okf("Uploaded %d file(s) to %s\n", len(nodes), site)

		return nil
	})
}
