package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cinema-reservation/internal/catalog"

	"github.com/google/uuid"
)

type slot struct {
	mu        sync.Mutex
	state     State
	bookingID uuid.UUID
	expiresAt time.Time
}

// current reports the state with lazy expiry applied. Caller holds s.mu.
func (s *slot) current(now time.Time) State {
	if s.state == StateHeld && !now.Before(s.expiresAt) {
		return StateFree
	}
	return s.state
}

func (s *slot) free() {
	s.state = StateFree
	s.bookingID = uuid.Nil
	s.expiresAt = time.Time{}
}

// Memory is an in-process ledger. Each seat has its own mutex and a request
// locks its seats in canonical order, so disjoint requests never contend and
// overlapping ones cannot deadlock.
type Memory struct {
	mu        sync.RWMutex
	showtimes map[uuid.UUID]map[catalog.SeatID]*slot
	opts      options
}

func NewMemory(opts ...Option) *Memory {
	return &Memory{
		showtimes: make(map[uuid.UUID]map[catalog.SeatID]*slot),
		opts:      buildOptions(opts),
	}
}

// slots returns the slot of every seat, creating missing ones when create is
// set. Missing slots are returned as nil otherwise.
func (m *Memory) slots(showtimeID uuid.UUID, seats []catalog.SeatID, create bool) []*slot {
	out := make([]*slot, len(seats))

	m.mu.RLock()
	missing := false
	if seatMap, ok := m.showtimes[showtimeID]; ok {
		for i, id := range seats {
			out[i] = seatMap[id]
			if out[i] == nil {
				missing = true
			}
		}
	} else {
		missing = true
	}
	m.mu.RUnlock()

	if !missing || !create {
		return out
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	seatMap, ok := m.showtimes[showtimeID]
	if !ok {
		seatMap = make(map[catalog.SeatID]*slot)
		m.showtimes[showtimeID] = seatMap
	}
	for i, id := range seats {
		s, ok := seatMap[id]
		if !ok {
			s = &slot{state: StateFree}
			seatMap[id] = s
		}
		out[i] = s
	}
	return out
}

func lockAll(slots []*slot) func() {
	for _, s := range slots {
		if s != nil {
			s.mu.Lock()
		}
	}
	return func() {
		for i := len(slots) - 1; i >= 0; i-- {
			if slots[i] != nil {
				slots[i].mu.Unlock()
			}
		}
	}
}

func (m *Memory) Availability(ctx context.Context, showtimeID uuid.UUID) ([]catalog.SeatID, error) {
	type entry struct {
		id catalog.SeatID
		s  *slot
	}

	m.mu.RLock()
	entries := make([]entry, 0, len(m.showtimes[showtimeID]))
	for id, s := range m.showtimes[showtimeID] {
		entries = append(entries, entry{id: id, s: s})
	}
	m.mu.RUnlock()

	now := m.opts.clock.Now()
	taken := make([]catalog.SeatID, 0, len(entries))
	for _, e := range entries {
		e.s.mu.Lock()
		st := e.s.current(now)
		e.s.mu.Unlock()
		if st != StateFree {
			taken = append(taken, e.id)
		}
	}

	catalog.SortSeatIDs(taken)
	return taken, nil
}

func (m *Memory) TryReserve(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return catalog.ErrNoSeats
	}

	slots := m.slots(showtimeID, ids, true)
	unlock := lockAll(slots)
	defer unlock()

	now := m.opts.clock.Now()
	var conflicts []catalog.SeatID
	for i, s := range slots {
		if s.current(now) != StateFree {
			conflicts = append(conflicts, ids[i])
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{Seats: conflicts}
	}

	expiresAt := now.Add(m.opts.holdTTL)
	for _, s := range slots {
		s.state = StateHeld
		s.bookingID = bookingID
		s.expiresAt = expiresAt
	}
	return nil
}

func (m *Memory) Confirm(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return catalog.ErrNoSeats
	}

	slots := m.slots(showtimeID, ids, false)
	unlock := lockAll(slots)
	defer unlock()

	now := m.opts.clock.Now()
	for i, s := range slots {
		if s == nil || s.current(now) != StateHeld || s.bookingID != bookingID {
			return fmt.Errorf("%w: %s", ErrNotHeld, ids[i])
		}
	}

	for _, s := range slots {
		s.state = StateBooked
		s.expiresAt = time.Time{}
	}
	return nil
}

func (m *Memory) Release(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	slots := m.slots(showtimeID, ids, false)
	unlock := lockAll(slots)
	defer unlock()

	for _, s := range slots {
		if s != nil && s.state != StateFree && s.bookingID == bookingID {
			s.free()
		}
	}
	return nil
}

func (m *Memory) SweepExpired(ctx context.Context) ([]ExpiredHold, error) {
	type entry struct {
		showtimeID uuid.UUID
		id         catalog.SeatID
		s          *slot
	}

	m.mu.RLock()
	var entries []entry
	for showtimeID, seatMap := range m.showtimes {
		for id, s := range seatMap {
			entries = append(entries, entry{showtimeID: showtimeID, id: id, s: s})
		}
	}
	m.mu.RUnlock()

	now := m.opts.clock.Now()
	var expired []expiredSeat
	for _, e := range entries {
		e.s.mu.Lock()
		if e.s.state == StateHeld && e.s.current(now) == StateFree {
			expired = append(expired, expiredSeat{showtimeID: e.showtimeID, bookingID: e.s.bookingID, seat: e.id})
			e.s.free()
		}
		e.s.mu.Unlock()
	}

	return groupExpired(expired), nil
}
