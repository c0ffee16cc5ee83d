package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSeat   = errors.New("invalid seat")
	ErrNoSeats       = errors.New("no seats requested")
	ErrUnknownLayout = errors.New("unknown seat layout")
)

type Tier string

const (
	TierVIP      Tier = "VIP"
	TierPremium  Tier = "Premium"
	TierStandard Tier = "Standard"
)

// SeatID identifies a seat inside a layout, e.g. row "A" number 1 ("A1").
type SeatID struct {
	Row    string
	Number int
}

func (id SeatID) String() string {
	return id.Row + strconv.Itoa(id.Number)
}

// Less orders seats by row, then number. Rows compare by length first so
// that "Z" sorts before "AA".
func (id SeatID) Less(other SeatID) bool {
	if id.Row != other.Row {
		if len(id.Row) != len(other.Row) {
			return len(id.Row) < len(other.Row)
		}
		return id.Row < other.Row
	}
	return id.Number < other.Number
}

// ParseSeatID parses "A1", "c10" and similar ids. Rows are upper-cased.
func ParseSeatID(raw string) (SeatID, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, raw)
	}

	n, err := strconv.Atoi(s[i:])
	if err != nil || n < 1 {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, raw)
	}

	return SeatID{Row: s[:i], Number: n}, nil
}

// SortSeatIDs sorts ids in place in the canonical lock order.
func SortSeatIDs(ids []SeatID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// Strings renders ids in their given order.
func Strings(ids []SeatID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

type Seat struct {
	ID    SeatID
	Tier  Tier
	Price decimal.Decimal
}

// Total sums seat prices.
func Total(seats []Seat) decimal.Decimal {
	total := decimal.Zero
	for _, s := range seats {
		total = total.Add(s.Price)
	}
	return total
}

// IDs returns the seat ids of seats, preserving order.
func IDs(seats []Seat) []SeatID {
	ids := make([]SeatID, len(seats))
	for i, s := range seats {
		ids[i] = s.ID
	}
	return ids
}
