package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
	"github.com/noah-isme/wellness-client/pkg/export"
)

var caseColumns = []table.Column[models.Case]{
	{Key: "id", Header: "ID"},
	{Key: "student_name", Header: "Student"},
	{Key: "title", Header: "Title"},
	{Key: "category", Header: "Category"},
	{Key: "priority", Header: "Priority"},
	{Key: "status", Header: "Status"},
	{Key: "opened_at", Header: "Opened"},
}

var noteColumns = []table.Column[models.CaseNote]{
	{Key: "created_at", Header: "Written"},
	{Key: "body", Header: "Note"},
	{Key: "private", Header: "Private"},
}

func casesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Work with counselling cases",
	}
	cmd.AddCommand(
		listCmd(c, "list", "List cases", "Cases", caseColumns,
			func(ctx context.Context, a *app.App, f models.CaseFilter) query.State[[]models.Case] {
				return a.Hooks.Cases.List(ctx, f)
			}),
		caseShowCmd(c),
		caseOpenCmd(c),
		caseCloseCmd(c),
		caseNoteCmd(c),
	)
	return cmd
}

func caseShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a case and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := c.session.Hooks.Cases.Get(cmd.Context(), args[0]).Result()
			if err != nil {
				return err
			}
			if found == nil {
				return fmt.Errorf("no record for id %q", args[0])
			}
			out := cmd.OutOrStdout()
			if err := renderRecord(out, found); err != nil {
				return err
			}
			if len(found.Notes) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			return export.Write(out, export.FormatText, table.New(noteColumns, found.Notes).Dataset("Notes"))
		},
	}
}

func caseOpenCmd(c *cli) *cobra.Command {
	var req models.CreateCaseRequest

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a case for a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := c.session.Hooks.Cases.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.StudentID, "student", "", "student id")
	f.StringVar(&req.Title, "title", "", "case title")
	f.StringVar(&req.Category, "category", "", "case category")
	f.StringVar(&req.Priority, "priority", "medium", "low, medium, high or urgent")
	f.StringVar(&req.Description, "description", "", "details")
	return cmd
}

func caseCloseCmd(c *cli) *cobra.Command {
	var req models.CloseCaseRequest

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close a case with a resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.session.Hooks.Cases.Close(cmd.Context(), args[0], req)
			return err
		},
	}
	cmd.Flags().StringVar(&req.Resolution, "resolution", "", "how the case was resolved")
	return cmd
}

func caseNoteCmd(c *cli) *cobra.Command {
	var req models.CaseNoteRequest

	cmd := &cobra.Command{
		Use:   "note <id>",
		Short: "Add a note to a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.session.Hooks.Cases.AddNote(cmd.Context(), args[0], req)
			return err
		},
	}
	cmd.Flags().StringVar(&req.Body, "body", "", "note text")
	cmd.Flags().BoolVar(&req.Private, "private", false, "hide the note from non-counselors")
	return cmd
}
