package request

import "time"

type CreateShowtimeRequest struct {
	MovieID  string    `json:"movie_id" validate:"required,max=64"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Layout   string    `json:"layout" validate:"omitempty,max=32"`
}
