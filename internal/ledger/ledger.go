// Package ledger records per-showtime seat state: free, held by a booking
// until an expiry, or booked. It is the only writer of that state.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
)

const DefaultHoldTTL = 10 * time.Minute

var (
	ErrConflict = errors.New("seats not free")
	ErrNotHeld  = errors.New("seats not held by booking")
)

type State string

const (
	StateFree   State = "free"
	StateHeld   State = "held"
	StateBooked State = "booked"
)

// ConflictError lists the requested seats that were not free.
type ConflictError struct {
	Seats []catalog.SeatID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats not free: %s", strings.Join(catalog.Strings(e.Seats), ","))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ExpiredHold is a hold removed by SweepExpired.
type ExpiredHold struct {
	ShowtimeID uuid.UUID
	BookingID  uuid.UUID
	Seats      []catalog.SeatID
}

type Ledger interface {
	// Availability returns the seats that are not free, in canonical order.
	// The result is advisory.
	Availability(ctx context.Context, showtimeID uuid.UUID) ([]catalog.SeatID, error)

	// TryReserve holds every seat for bookingID or none of them. When any
	// seat is taken it returns *ConflictError naming exactly those seats.
	TryReserve(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error

	// Confirm turns live holds of bookingID into bookings. ErrNotHeld when
	// any seat is not held by bookingID or its hold has expired.
	Confirm(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error

	// Release frees seats held or booked by bookingID. Seats that are free
	// or owned by another booking are left alone.
	Release(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error

	// SweepExpired frees expired holds and reports them per booking.
	SweepExpired(ctx context.Context) ([]ExpiredHold, error)
}

type options struct {
	holdTTL time.Duration
	clock   clock.Clock
}

type Option func(*options)

func WithHoldTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.holdTTL = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{holdTTL: DefaultHoldTTL, clock: clock.NewSystem()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// sortedUnique copies seats into canonical lock order without duplicates.
func sortedUnique(seats []catalog.SeatID) []catalog.SeatID {
	out := make([]catalog.SeatID, 0, len(seats))
	seen := make(map[catalog.SeatID]struct{}, len(seats))
	for _, s := range seats {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	catalog.SortSeatIDs(out)
	return out
}

// groupExpired folds per-seat expiries into one entry per booking.
func groupExpired(rows []expiredSeat) []ExpiredHold {
	type key struct{ showtime, booking uuid.UUID }
	idx := make(map[key]int)
	var out []ExpiredHold
	for _, r := range rows {
		k := key{r.showtimeID, r.bookingID}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, ExpiredHold{ShowtimeID: r.showtimeID, BookingID: r.bookingID})
		}
		out[i].Seats = append(out[i].Seats, r.seat)
	}
	for i := range out {
		catalog.SortSeatIDs(out[i].Seats)
	}
	return out
}

type expiredSeat struct {
	showtimeID uuid.UUID
	bookingID  uuid.UUID
	seat       catalog.SeatID
}
