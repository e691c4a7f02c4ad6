package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var observationColumns = []table.Column[models.Observation]{
	{Key: "id", Header: "ID"},
	{Key: "student_id", Header: "Student"},
	{Key: "category", Header: "Category"},
	{Key: "severity", Header: "Severity"},
	{Key: "observed_at", Header: "Observed"},
	{Key: "note", Header: "Note"},
}

func observationsCmd(c *cli) *cobra.Command {
	cmd := listCmd(c, "observations", "List behavioural observations", "Observations", observationColumns,
		func(ctx context.Context, a *app.App, f models.ObservationFilter) query.State[[]models.Observation] {
			return a.Hooks.Observations.List(ctx, f)
		})
	cmd.AddCommand(showCmd(c, "Show one observation", func(ctx context.Context, a *app.App, id string) query.State[*models.Observation] {
		return a.Hooks.Observations.Get(ctx, id)
	}))
	return cmd
}
