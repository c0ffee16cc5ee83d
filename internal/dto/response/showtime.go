package response

import (
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"

	"github.com/shopspring/decimal"
)

type ShowtimeResponse struct {
	ID       string    `json:"id"`
	MovieID  string    `json:"movie_id"`
	StartsAt time.Time `json:"starts_at"`
	Layout   string    `json:"layout"`
}

func ShowtimeToResponse(s *entity.Showtime) ShowtimeResponse {
	return ShowtimeResponse{
		ID:       s.ID.String(),
		MovieID:  s.MovieID,
		StartsAt: s.StartsAt,
		Layout:   s.Layout,
	}
}

type SectionResponse struct {
	Tier        string          `json:"tier"`
	Rows        []string        `json:"rows"`
	SeatsPerRow int             `json:"seats_per_row"`
	Price       decimal.Decimal `json:"price"`
}

// SeatAvailabilityResponse is what seat maps poll. booked_seats lists every
// seat that is held or booked.
type SeatAvailabilityResponse struct {
	ShowtimeID  string                     `json:"showtime_id"`
	BookedSeats []string                   `json:"booked_seats"`
	SeatPrices  map[string]decimal.Decimal `json:"seat_prices"`
	Sections    []SectionResponse          `json:"sections"`
	TotalSeats  int                        `json:"total_seats"`
}

func NewSeatAvailabilityResponse(showtimeID string, layout *catalog.Layout, taken []catalog.SeatID) SeatAvailabilityResponse {
	prices := make(map[string]decimal.Decimal)
	for tier, price := range layout.Prices() {
		prices[string(tier)] = price
	}

	sections := make([]SectionResponse, 0, len(layout.Sections))
	for _, sec := range layout.Sections {
		sections = append(sections, SectionResponse{
			Tier:        string(sec.Tier),
			Rows:        sec.Rows,
			SeatsPerRow: sec.SeatsPerRow,
			Price:       prices[string(sec.Tier)],
		})
	}

	return SeatAvailabilityResponse{
		ShowtimeID:  showtimeID,
		BookedSeats: catalog.Strings(taken),
		SeatPrices:  prices,
		Sections:    sections,
		TotalSeats:  layout.Size(),
	}
}
