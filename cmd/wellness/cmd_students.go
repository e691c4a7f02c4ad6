package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var studentColumns = []table.Column[models.Student]{
	{Key: "id", Header: "ID"},
	{Key: "student_number", Header: "Number"},
	{Key: "name", Header: "Name"},
	{Key: "grade", Header: "Grade"},
	{Key: "class_name", Header: "Class"},
	{Key: "risk_level", Header: "Risk"},
}

func studentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Browse and register students",
	}
	cmd.AddCommand(
		listCmd(c, "list", "List students", "Students", studentColumns,
			func(ctx context.Context, a *app.App, f models.StudentFilter) query.State[[]models.Student] {
				return a.Hooks.Students.List(ctx, f)
			}),
		showCmd(c, "Show one student", func(ctx context.Context, a *app.App, id string) query.State[*models.Student] {
			return a.Hooks.Students.Get(ctx, id)
		}),
		studentCreateCmd(c),
	)
	return cmd
}

func studentCreateCmd(c *cli) *cobra.Command {
	var req models.CreateStudentRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			student, err := c.session.Hooks.Students.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), student.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.StudentNumber, "number", "", "student number")
	f.StringVar(&req.Name, "name", "", "full name")
	f.StringVar(&req.Grade, "grade", "", "grade")
	f.StringVar(&req.ClassName, "class", "", "class name")
	f.StringVar(&req.Gender, "gender", "", "male or female")
	f.StringVar(&req.DateOfBirth, "born", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&req.CounselorID, "counselor", "", "assigned counselor id")
	return cmd
}
