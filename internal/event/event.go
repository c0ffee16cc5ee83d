// Package event publishes booking lifecycle events to a message broker.
// Delivery is best effort: a failed publish never undoes a booking.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBookingConfirmed Type = "booking.confirmed"
	TypeBookingCancelled Type = "booking.cancelled"
	TypeBookingExpired   Type = "booking.expired"
)

// Types lists every event type; brokers declare one destination each.
var Types = []Type{TypeBookingConfirmed, TypeBookingCancelled, TypeBookingExpired}

const (
	Version  = 1
	Producer = "cinema-reservation"
)

type BookingPayload struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	UserID      uuid.UUID `json:"user_id"`
	ShowtimeID  uuid.UUID `json:"showtime_id"`
	Seats       []string  `json:"seats"`
	TotalAmount string    `json:"total_amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	PaymentRef  string    `json:"payment_ref,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

type Envelope struct {
	EventID       uuid.UUID      `json:"event_id"`
	EventType     Type           `json:"event_type"`
	EventVersion  int            `json:"event_version"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Producer      string         `json:"producer"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Payload       BookingPayload `json:"payload"`
}

func NewEnvelope(typ Type, payload BookingPayload, correlationID string, at time.Time) Envelope {
	return Envelope{
		EventID:       uuid.New(),
		EventType:     typ,
		EventVersion:  Version,
		OccurredAt:    at.UTC(),
		Producer:      Producer,
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }
func (Nop) Close() error                            { return nil }
