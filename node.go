package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Resolve and delete nodes by reference",
	}

	cmd.AddCommand(newNodeRefCmd())
	cmd.AddCommand(newNodeDeleteCmd())

	return cmd
}

func newNodeRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ref <site-id> <name>",
		Short: "Print the reference of a folder or document found by name",
		Long: `Search the site's document library, breadth first, for a folder or
document with the given name and print its node reference.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				ref, err := s.Client.GetNodeRef(ctx, s.Creds, args[0], args[1])
				if err != nil {
					return err
				}

				if ref.IsZero() {
					return &alfresco.NotFoundError{Kind: "node", Name: args[1]}
				}

				fmt.Fprintln(cmd.OutOrStdout(), ref)

				return nil
			})
		},
	}
}

func newNodeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <node-ref>",
		Short: "Delete a node, and everything below it, by reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withSession(ctx, false, func(s *Session) error {
				if err := s.Client.DeleteNode(ctx, s.Creds, alfresco.NodeRef(args[0])); err != nil {
					return fmt.Errorf("deleting node %s: %w", args[0], err)
				}

				okf("Deleted node %s\n", args[0])

				return nil
			})
		},
	}
}
