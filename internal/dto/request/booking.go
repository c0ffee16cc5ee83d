package request

type CreateBookingRequest struct {
	ShowtimeID string   `json:"showtime_id" validate:"required,uuid"`
	Seats      []string `json:"seats" validate:"required,min=1,max=20,dive,required,seatid"`
}
