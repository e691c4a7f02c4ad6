package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var alertColumns = []table.Column[models.RiskAlert]{
	{Key: "id", Header: "ID"},
	{Key: "student_name", Header: "Student"},
	{Key: "level", Header: "Level"},
	{Key: "status", Header: "Status"},
	{Key: "reason", Header: "Reason"},
	{Key: "created_at", Header: "Raised"},
}

func alertsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review risk alerts",
	}
	cmd.AddCommand(
		listCmd(c, "list", "List risk alerts", "Alerts", alertColumns,
			func(ctx context.Context, a *app.App, f models.AlertFilter) query.State[[]models.RiskAlert] {
				return a.Hooks.Alerts.List(ctx, f)
			}),
		&cobra.Command{
			Use:   "ack <id>",
			Short: "Acknowledge an alert",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := c.session.Hooks.Alerts.Acknowledge(cmd.Context(), args[0])
				return err
			},
		},
		alertResolveCmd(c),
	)
	return cmd
}

func alertResolveCmd(c *cli) *cobra.Command {
	var req models.ResolveAlertRequest

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.session.Hooks.Alerts.Resolve(cmd.Context(), args[0], req)
			return err
		},
	}
	cmd.Flags().StringVar(&req.Resolution, "resolution", "", "what was done")
	return cmd
}
