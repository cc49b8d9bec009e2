// Package event carries booking lifecycle notifications to explicitly
// registered subscribers.
package event

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindCreated     Kind = "booking.created"
	KindConfirmed   Kind = "booking.confirmed"
	KindConflict    Kind = "booking.conflict"
	KindCancelled   Kind = "booking.cancelled"
	KindRefunded    Kind = "booking.refunded"
	KindExpired     Kind = "booking.expired"
	KindRescheduled Kind = "booking.rescheduled"
)

type Event struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"kind"`
	OccurredAt      time.Time `json:"occurred_at"`
	BookingID       string    `json:"booking_id"`
	ResourceID      string    `json:"resource_id"`
	ResourceOwnerID string    `json:"resource_owner_id"`
	CustomerID      string    `json:"customer_id"`
	Status          string    `json:"status"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Timezone        string    `json:"timezone,omitempty"`
	ConflictWithID  string    `json:"conflict_with_id,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	RefundAmount    string    `json:"refund_amount,omitempty"`
	Currency        string    `json:"currency,omitempty"`
}

func New(kind Kind, occurredAt time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: occurredAt,
	}
}
