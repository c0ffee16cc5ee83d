package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const DefaultLayout = "standard"

// Section is a block of rows sharing one tier.
type Section struct {
	Tier        Tier
	Rows        []string
	SeatsPerRow int
}

// Layout is the immutable seat map of an auditorium. A seat's tier is a
// function of its row.
type Layout struct {
	Name     string
	Sections []Section

	prices map[Tier]decimal.Decimal
	rows   map[string]Section
	seats  []Seat
}

func NewLayout(name string, sections []Section, prices map[Tier]decimal.Decimal) (*Layout, error) {
	l := &Layout{
		Name:     name,
		Sections: sections,
		prices:   make(map[Tier]decimal.Decimal, len(prices)),
		rows:     make(map[string]Section),
	}
	for t, p := range prices {
		l.prices[t] = p
	}

	for _, sec := range sections {
		price, ok := l.prices[sec.Tier]
		if !ok {
			return nil, fmt.Errorf("layout %s: no price for tier %s", name, sec.Tier)
		}
		if sec.SeatsPerRow < 1 {
			return nil, fmt.Errorf("layout %s: section %s has no seats", name, sec.Tier)
		}
		for _, row := range sec.Rows {
			if _, dup := l.rows[row]; dup {
				return nil, fmt.Errorf("layout %s: row %s defined twice", name, row)
			}
			l.rows[row] = sec
			for n := 1; n <= sec.SeatsPerRow; n++ {
				l.seats = append(l.seats, Seat{ID: SeatID{Row: row, Number: n}, Tier: sec.Tier, Price: price})
			}
		}
	}

	sort.Slice(l.seats, func(i, j int) bool { return l.seats[i].ID.Less(l.seats[j].ID) })
	return l, nil
}

// Seats returns every seat in canonical order.
func (l *Layout) Seats() []Seat {
	out := make([]Seat, len(l.seats))
	copy(out, l.seats)
	return out
}

func (l *Layout) Size() int {
	return len(l.seats)
}

func (l *Layout) Seat(id SeatID) (Seat, error) {
	sec, ok := l.rows[id.Row]
	if !ok || id.Number < 1 || id.Number > sec.SeatsPerRow {
		return Seat{}, fmt.Errorf("%w: %s is not in layout %s", ErrInvalidSeat, id, l.Name)
	}
	return Seat{ID: id, Tier: sec.Tier, Price: l.prices[sec.Tier]}, nil
}

func (l *Layout) PriceOf(id SeatID) (decimal.Decimal, error) {
	seat, err := l.Seat(id)
	if err != nil {
		return decimal.Zero, err
	}
	return seat.Price, nil
}

// Prices returns the tier price table of the layout.
func (l *Layout) Prices() map[Tier]decimal.Decimal {
	out := make(map[Tier]decimal.Decimal, len(l.prices))
	for t, p := range l.prices {
		out[t] = p
	}
	return out
}

// Resolve parses raw seat ids, validates them against the layout, drops
// duplicates and returns the seats in canonical order.
func (l *Layout) Resolve(raw []string) ([]Seat, error) {
	if len(raw) == 0 {
		return nil, ErrNoSeats
	}

	seen := make(map[SeatID]struct{}, len(raw))
	seats := make([]Seat, 0, len(raw))
	for _, r := range raw {
		id, err := ParseSeatID(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		seat, err := l.Seat(id)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	sort.Slice(seats, func(i, j int) bool { return seats[i].ID.Less(seats[j].ID) })
	return seats, nil
}
