package entity

import (
	"cinema-reservation/internal/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	BaseNoDelete
	Reference   string          `db:"reference"`
	UserID      uuid.UUID       `db:"user_id"`
	ShowtimeID  uuid.UUID       `db:"showtime_id"`
	TotalSeats  int             `db:"total_seats"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Currency    string          `db:"currency"`
	Status      BookingStatus   `db:"status"`
	PaymentRef  *string         `db:"payment_ref"`
	Seats       []BookingSeat
}

// SeatIDs returns the booked seats in catalog order.
func (b *Booking) SeatIDs() []catalog.SeatID {
	ids := make([]catalog.SeatID, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	catalog.SortSeatIDs(ids)
	return ids
}
