package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/table"
	"github.com/noah-isme/wellness-client/pkg/export"
)

var (
	trendColumns = []table.Column[models.TrendPoint]{
		{Key: "period", Header: "Period"},
		{Key: "label", Header: "Label"},
		{Key: "value", Header: "Value"},
	}
	completionColumns = []table.Column[models.CompletionRate]{
		{Key: "title", Header: "Assessment"},
		{Key: "assigned", Header: "Assigned"},
		{Key: "completed", Header: "Completed"},
		{Key: "rate", Header: "Rate"},
	}
)

func dashboardCmd(c *cli) *cobra.Command {
	var filters map[string]string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show headline counters, risk trend and assessment completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.AnalyticsFilter
			if len(filters) > 0 {
				if err := models.DecodeFilter(filters, &filter); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			analytics := c.session.Hooks.Analytics

			summary, err := analytics.Dashboard(ctx, filter).Result()
			if err != nil {
				return err
			}
			trend, err := analytics.RiskTrend(ctx, filter).Result()
			if err != nil {
				return err
			}
			completion, err := analytics.AssessmentCompletion(ctx, filter).Result()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := renderRecord(out, summary); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nRisk trend")
			if err := export.Write(out, export.FormatText, table.New(trendColumns, trend).Dataset("Risk trend")); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nAssessment completion")
			return export.Write(out, export.FormatText, table.New(completionColumns, completion).Dataset("Assessment completion"))
		},
	}
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "period and grade, e.g. --filter from=2024-01-01,grade=10")
	return cmd
}
