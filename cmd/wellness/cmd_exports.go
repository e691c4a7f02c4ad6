package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func exportsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "Manage saved table exports",
	}
	cmd.AddCommand(exportsCleanCmd(c))
	return cmd
}

func exportsCleanCmd(c *cli) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete old export files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exports, err := c.session.Exports()
			if err != nil {
				return err
			}
			removed, err := exports.CleanupOlderThan(olderThan)
			if err != nil {
				return err
			}
			for _, name := range removed {
				fmt.Fprintln(cmd.OutOrStdout(), "removed", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) removed from %s\n", len(removed), exports.Dir())
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "age threshold")
	return cmd
}
