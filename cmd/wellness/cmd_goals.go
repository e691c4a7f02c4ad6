package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var goalColumns = []table.Column[models.Goal]{
	{Key: "id", Header: "ID"},
	{Key: "case_id", Header: "Case"},
	{Key: "title", Header: "Title"},
	{Key: "progress", Header: "Progress"},
	{Key: "status", Header: "Status"},
	{Key: "due_date", Header: "Due"},
}

func goalsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Track case goals",
	}
	cmd.AddCommand(goalListCmd(c), goalProgressCmd(c))
	return cmd
}

func goalListCmd(c *cli) *cobra.Command {
	var caseID string
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals, optionally for one case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var st query.State[[]models.Goal]
			if caseID != "" {
				st = c.session.Hooks.Goals.ByCase(ctx, caseID)
			} else {
				var filter models.GoalFilter
				if err := opts.decode(&filter); err != nil {
					return err
				}
				st = c.session.Hooks.Goals.List(ctx, filter)
			}
			return renderList(cmd, c, "Goals", opts, goalColumns, st)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&caseID, "case", "", "only goals of this case")
	return cmd
}

func goalProgressCmd(c *cli) *cobra.Command {
	var req models.GoalProgressRequest

	cmd := &cobra.Command{
		Use:   "progress <id>",
		Short: "Record goal progress as a percentage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.session.Hooks.Goals.UpdateProgress(cmd.Context(), args[0], req)
			return err
		},
	}
	cmd.Flags().IntVar(&req.Progress, "value", 0, "progress between 0 and 100")
	cmd.Flags().StringVar(&req.Note, "note", "", "optional comment")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
