package entity

import (
	"cinema-reservation/internal/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingSeat is a seat line of a booking with the price charged for it.
type BookingSeat struct {
	BookingID uuid.UUID       `db:"booking_id"`
	Position  int             `db:"position"`
	SeatID    catalog.SeatID  `db:"seat_id"`
	Tier      catalog.Tier    `db:"tier"`
	Price     decimal.Decimal `db:"price"`
}
