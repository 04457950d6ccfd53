package services

import (
	"fmt"
	"time"
)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing table or booking.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictRange describes one existing booking that blocks a candidate
// window. Exposed so the API can tell the client which slots are taken.
type ConflictRange struct {
	BookingID  uint      `json:"booking_id"`
	ClientName string    `json:"client_name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// ConflictError means another active booking overlaps the requested window.
// The caller must pick a different window; nothing is retried automatically.
type ConflictError struct {
	TableID   uint            `json:"table_id"`
	Conflicts []ConflictRange `json:"conflicts"`
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("booking time conflict on table %d", e.TableID)
	}
	c := e.Conflicts[0]
	return fmt.Sprintf("booking time conflict on table %d: %s - %s already booked",
		e.TableID, c.StartTime.Format(time.RFC3339), c.EndTime.Format(time.RFC3339))
}

// InvalidTransitionError reports an illegal booking lifecycle move, e.g.
// cancelling a completed booking or one whose start time has passed.
type InvalidTransitionError struct {
	BookingID uint
	From      string
	To        string
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("booking %d: cannot move from %s to %s: %s", e.BookingID, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("booking %d: cannot move from %s to %s", e.BookingID, e.From, e.To)
}
