package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

func newFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Create and delete folders in a site's document library",
	}

	cmd.AddCommand(newFolderCreateCmd())
	cmd.AddCommand(newFolderDeleteCmd())

	return cmd
}

func newFolderCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <site-id> <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(2),
		RunE:  runFolderCreate,
	}

	cmd.Flags().String("parent", "", "create inside this existing folder instead of the library root")
	cmd.Flags().Bool("unique", false, "append a random suffix to the folder name")

	return cmd
}

// nodeJSONOutput is the JSON output schema for a created node.
type nodeJSONOutput struct {
	Name     string `json:"name"`
	Ref      string `json:"ref"`
	Parent   string `json:"parent"`
	IsFolder bool   `json:"is_folder"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size"`
}

func toNodeJSON(n *alfresco.Node) nodeJSONOutput {
	return nodeJSONOutput{
		Name:     n.Name,
		Ref:      n.Ref.String(),
		Parent:   n.ParentRef.String(),
		IsFolder: n.IsFolder,
		MimeType: n.MimeType,
		Size:     n.Size,
	}
}

func runFolderCreate(cmd *cobra.Command, args []string) error {
	parent, err := cmd.Flags().GetString("parent")
	if err != nil {
		return err
	}

	unique, err := cmd.Flags().GetBool("unique")
	if err != nil {
		return err
	}

	site := args[0]
	name := fixtureName(args[1], unique)
	ctx := cmd.Context()

	return withSession(ctx, true, func(s *Session) error {
		var (
			node *alfresco.Node
			err  error
		)

		if parent == "" {
			node, err = s.Client.CreateFolder(ctx, s.Creds, site, name)
		} else {
			node, err = s.Client.CreateFolderIn(ctx, s.Creds, site, parent, name)
		}

		if err != nil {
			return fmt.Errorf("creating folder %q: %w", name, err)
		}

		s.Record(ctx, ledger.Fixture{
			Kind:    ledger.KindFolder,
			Site:    site,
			Name:    node.Name,
			NodeRef: node.Ref.String(),
		})

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), toNodeJSON(node))
		}

		fmt.Fprintln(cmd.OutOrStdout(), node.Ref)
		okf("Created folder %s in %s\n", node.Name, site)

		return nil
	})
}

func newFolderDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <site-id> <name>",
		Short: "Delete a folder",
		Long: `Delete a folder from a site's document library. A folder that still has
children is refused unless --recursive is given, in which case everything
below it is deleted first.`,
		Args: cobra.ExactArgs(2),
		RunE: runFolderDelete,
	}

	cmd.Flags().BoolP("recursive", "r", false, "delete the folder's contents too")

	return cmd
}

func runFolderDelete(cmd *cobra.Command, args []string) error {
	recursive, err := cmd.Flags().GetBool("recursive")
	if err != nil {
		return err
	}

	site, name := args[0], args[1]
	ctx := cmd.Context()

	return withSession(ctx, false, func(s *Session) error {
		if recursive {
			err = s.Client.DeleteTree(ctx, s.Creds, site, name)
		} else {
			err = s.Client.DeleteFolder(ctx, s.Creds, site, name)
		}

		if err != nil {
			return fmt.Errorf("deleting folder %q: %w", name, err)
		}

		okf("Deleted folder %s\n", name)

		return nil
	})
}
