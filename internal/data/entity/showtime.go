package entity

import (
	"time"
)

type Showtime struct {
	BaseNoDelete
	MovieID  string    `db:"movie_id"`
	StartsAt time.Time `db:"starts_at"`
	Layout   string    `db:"layout"`
}

// HasStarted reports whether seats can no longer be booked or cancelled.
func (s *Showtime) HasStarted(now time.Time) bool {
	return !now.Before(s.StartsAt)
}
