package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var assessmentColumns = []table.Column[models.Assessment]{
	{Key: "id", Header: "ID"},
	{Key: "title", Header: "Title"},
	{Key: "type", Header: "Type"},
	{Key: "question_count", Header: "Questions"},
	{Key: "active", Header: "Active"},
}

var assignmentColumns = []table.Column[models.AssessmentAssignment]{
	{Key: "id", Header: "ID"},
	{Key: "assessment_id", Header: "Assessment"},
	{Key: "student_id", Header: "Student"},
	{Key: "status", Header: "Status"},
	{Key: "score", Header: "Score"},
	{Key: "due_date", Header: "Due"},
}

func assessmentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assessments",
		Short: "Manage screening assessments",
	}
	cmd.AddCommand(
		listCmd(c, "list", "List assessments", "Assessments", assessmentColumns,
			func(ctx context.Context, a *app.App, f models.AssessmentFilter) query.State[[]models.Assessment] {
				return a.Hooks.Assessments.List(ctx, f)
			}),
		listCmd(c, "assignments", "List assessment assignments", "Assignments", assignmentColumns,
			func(ctx context.Context, a *app.App, f models.AssignmentFilter) query.State[[]models.AssessmentAssignment] {
				return a.Hooks.Assessments.Assignments(ctx, f)
			}),
		assessmentAssignCmd(c),
	)
	return cmd
}

func assessmentAssignCmd(c *cli) *cobra.Command {
	var req models.AssignAssessmentRequest

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign an assessment to students",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.session.Hooks.Assessments.Assign(cmd.Context(), args[0], req)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&req.StudentIDs, "student", nil, "student id; repeat or comma separate")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}
