package response

import (
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/shopspring/decimal"
)

type BookingSeatResponse struct {
	Seat  string          `json:"seat"`
	Tier  string          `json:"tier"`
	Price decimal.Decimal `json:"price"`
}

type BookingResponse struct {
	ID          string                `json:"id"`
	Reference   string                `json:"reference"`
	UserID      string                `json:"user_id"`
	ShowtimeID  string                `json:"showtime_id"`
	TotalSeats  int                   `json:"total_seats"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Currency    string                `json:"currency"`
	Status      entity.BookingStatus  `json:"status"`
	PaymentRef  string                `json:"payment_ref,omitempty"`
	Seats       []BookingSeatResponse `json:"seats"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	seats := make([]BookingSeatResponse, 0, len(b.Seats))
	for _, s := range b.Seats {
		seats = append(seats, BookingSeatResponse{
			Seat:  s.SeatID.String(),
			Tier:  string(s.Tier),
			Price: s.Price,
		})
	}

	resp := BookingResponse{
		ID:          b.ID.String(),
		Reference:   b.Reference,
		UserID:      b.UserID.String(),
		ShowtimeID:  b.ShowtimeID.String(),
		TotalSeats:  b.TotalSeats,
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		Status:      b.Status,
		Seats:       seats,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.PaymentRef != nil {
		resp.PaymentRef = *b.PaymentRef
	}
	return resp
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b))
	}
	return out
}
