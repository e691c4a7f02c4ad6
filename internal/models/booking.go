package models

import (
	"net/url"
	"time"
)

// Booking is a counselling appointment.
type Booking struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	CounselorID  string    `json:"counselor_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Mode         string    `json:"mode"`
	Status       string    `json:"status"`
	Topic        string    `json:"topic,omitempty"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingFilter lists bookings.
type BookingFilter struct {
	Page
	StudentID   string     `json:"student_id"`
	CounselorID string     `json:"counselor_id"`
	Status      string     `json:"status"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
}

func (f BookingFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "student_id", f.StudentID)
	setString(v, "counselor_id", f.CounselorID)
	setString(v, "status", f.Status)
	setDate(v, "from", f.From)
	setDate(v, "to", f.To)
	return v
}

// CreateBookingRequest books a session.
type CreateBookingRequest struct {
	StudentID   string    `json:"student_id" validate:"required"`
	CounselorID string    `json:"counselor_id" validate:"required"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Mode        string    `json:"mode" validate:"required,oneof=in_person online"`
	Topic       string    `json:"topic,omitempty"`
}

// UpdateBookingRequest reschedules a session.
type UpdateBookingRequest struct {
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Mode     string     `json:"mode,omitempty" validate:"omitempty,oneof=in_person online"`
	Topic    string     `json:"topic,omitempty"`
}

// CancelBookingRequest cancels a session.
type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}
