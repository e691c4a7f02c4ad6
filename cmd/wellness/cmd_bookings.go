package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
)

var bookingColumns = []table.Column[models.Booking]{
	{Key: "id", Header: "ID"},
	{Key: "student_id", Header: "Student"},
	{Key: "counselor_id", Header: "Counselor"},
	{Key: "starts_at", Header: "Starts"},
	{Key: "mode", Header: "Mode"},
	{Key: "status", Header: "Status"},
}

func bookingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage counselling appointments",
	}
	cmd.AddCommand(
		listCmd(c, "list", "List bookings", "Bookings", bookingColumns,
			func(ctx context.Context, a *app.App, f models.BookingFilter) query.State[[]models.Booking] {
				return a.Hooks.Bookings.List(ctx, f)
			}),
		bookingCancelCmd(c),
	)
	return cmd
}

func bookingCancelCmd(c *cli) *cobra.Command {
	var req models.CancelBookingRequest

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.session.Hooks.Bookings.Cancel(cmd.Context(), args[0], req)
			return err
		},
	}
	cmd.Flags().StringVar(&req.Reason, "reason", "", "why the session is cancelled")
	return cmd
}
