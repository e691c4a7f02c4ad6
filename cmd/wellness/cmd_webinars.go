package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var webinarColumns = []table.Column[models.Webinar]{
	{Key: "id", Header: "ID"},
	{Key: "title", Header: "Title"},
	{Key: "speaker", Header: "Speaker"},
	{Key: "audience", Header: "Audience"},
	{Key: "starts_at", Header: "Starts"},
	{Key: "registered", Header: "Registered"},
	{Key: "capacity", Header: "Capacity"},
}

func webinarsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webinars",
		Short: "Browse and join webinars",
	}
	cmd.AddCommand(
		listCmd(c, "list", "List webinars", "Webinars", webinarColumns,
			func(ctx context.Context, a *app.App, f models.WebinarFilter) query.State[[]models.Webinar] {
				return a.Hooks.Webinars.List(ctx, f)
			}),
		&cobra.Command{
			Use:   "register <id>",
			Short: "Register for a webinar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := c.session.Hooks.Webinars.Register(cmd.Context(), args[0])
				return err
			},
		},
	)
	return cmd
}
