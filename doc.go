package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

func newDocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doc",
		Aliases: []string{"document"},
		Short:   "Create, read, update and delete documents",
	}

	cmd.AddCommand(newDocCreateCmd())
	cmd.AddCommand(newDocGetCmd())
	cmd.AddCommand(newDocUpdateCmd())
	cmd.AddCommand(newDocDeleteCmd())

	return cmd
}

// addContentFlags registers the flags shared by create and update.
func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "text", "document type: text, xml, html, pdf, word, excel, powerpoint or a MIME type")
	cmd.Flags().String("content", "", "document content")
	cmd.Flags().String("file", "", "read content from this local file")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
}

// contentFlags reads --type, --content and --file.
func contentFlags(cmd *cobra.Command) (alfresco.DocumentType, string, string, error) {
	typeFlag, err := cmd.Flags().GetString("type")
	if err != nil {
		return "", "", "", err
	}

	docType, ok := alfresco.ParseDocumentType(typeFlag)
	if !ok {
		return "", "", "", fmt.Errorf("invalid --type %q", typeFlag)
	}

	content, err := cmd.Flags().GetString("content")
	if err != nil {
		return "", "", "", err
	}

	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", "", "", err
	}

	return docType, content, file, nil
}

// readContent returns content, or the contents of file when one is given.
func readContent(content, file string) (string, error) {
	if file == "" {
		return content, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}

	return string(data), nil
}

func newDocCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <site-id> [name]",
		Short: "Create a document",
		Long: `Create a document in a site's document library, or in one of its folders
with --folder. The name may be left out when --file is given; the file's
base name is used.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDocCreate,
	}

	addContentFlags(cmd)
	cmd.Flags().String("folder", "", "create inside this existing folder")
	cmd.Flags().Bool("unique", false, "append a random suffix to the document name")

	return cmd
}

func runDocCreate(cmd *cobra.Command, args []string) error {
	docType, content, file, err := contentFlags(cmd)
	if err != nil {
		return err
	}

	folder, err := cmd.Flags().GetString("folder")
	if err != nil {
		return err
	}

	unique, err := cmd.Flags().GetBool("unique")
	if err != nil {
		return err
	}

	site := args[0]

	name := ""
	if len(args) > 1 {
		name = args[1]
	}

	if name == "" && file == "" {
		return errors.New("a document name is required unless --file is given")
	}

	if name != "" {
		name = fixtureName(name, unique)
	}

	ctx := cmd.Context()

	return withSession(ctx, true, func(s *Session) error {
		var node *alfresco.Node

		switch {
		case file != "" && folder == "":
			node, err = s.Client.CreateDocumentFromFile(ctx, s.Creds, site, docType, file, name)
		case folder != "":
			body, readErr := readContent(content, file)
			if readErr != nil {
				return readErr
			}

			if name == "" {
				name = fixtureName(filepath.Base(file), unique)
			}

			node, err = s.Client.CreateDocumentInFolder(ctx, s.Creds, site, folder, docType, name, body)
		default:
			node, err = s.Client.CreateDocument(ctx, s.Creds, site, docType, name, content)
		}

		if err != nil {
			return fmt.Errorf("creating document: %w", err)
		}

		s.Record(ctx, ledger.Fixture{
			Kind:    ledger.KindDocument,
			Site:    site,
			Name:    node.Name,
			NodeRef: node.Ref.String(),
		})

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), toNodeJSON(node))
		}

		fmt.Fprintln(cmd.OutOrStdout(), node.Ref)
		okf("Created document %s in %s\n", node.Name, site)

		return nil
	})
}

func newDocGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <site-id> <name>",
		Short: "Print a document's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				content, err := s.Client.GetDocumentContent(ctx, s.Creds, args[0], args[1])
				if err != nil {
					return fmt.Errorf("reading %q: %w", args[1], err)
				}

				_, err = io.WriteString(cmd.OutOrStdout(), content)

				return err
			})
		},
	}
}

func newDocUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <site-id> <name>",
		Short: "Replace a document's content",
		Args:  cobra.ExactArgs(2),
		RunE:  runDocUpdate,
	}

	addContentFlags(cmd)

	return cmd
}

func runDocUpdate(cmd *cobra.Command, args []string) error {
	docType, content, file, err := contentFlags(cmd)
	if err != nil {
		return err
	}

	body, err := readContent(content, file)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	return withSession(ctx, false, func(s *Session) error {
		updated, err := s.Client.UpdateDocumentContent(ctx, s.Creds, args[0], docType, args[1], body)
		if err != nil {
			return fmt.Errorf("updating %q: %w", args[1], err)
		}

		if !updated {
			return fmt.Errorf("updating %q: server refused the new content", args[1])
		}

		okf("Updated %s\n", args[1])

		return nil
	})
}

func newDocDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <site-id> <name>...",
		Short: "Delete one or more documents",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			names := args[1:]

			return withSession(ctx, false, func(s *Session) error {
				if err := s.Client.DeleteFiles(ctx, s.Creds, args[0], names...); err != nil {
					return err
				}

				okf("Deleted %d document(s)\n", len(names))

				return nil
			})
		},
	}
}
