package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatID(t *testing.T) {
	tests := []struct {
		raw     string
		want    SeatID
		wantErr bool
	}{
		{raw: "A1", want: SeatID{Row: "A", Number: 1}},
		{raw: " f3 ", want: SeatID{Row: "F", Number: 3}},
		{raw: "J12", want: SeatID{Row: "J", Number: 12}},
		{raw: "AA4", want: SeatID{Row: "AA", Number: 4}},
		{raw: "", wantErr: true},
		{raw: "A", wantErr: true},
		{raw: "12", wantErr: true},
		{raw: "A0", wantErr: true},
		{raw: "A-1", wantErr: true},
		{raw: "A1B", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSeatID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestSortSeatIDs(t *testing.T) {
	ids := []SeatID{
		{Row: "B", Number: 2},
		{Row: "A", Number: 10},
		{Row: "AA", Number: 1},
		{Row: "A", Number: 2},
		{Row: "Z", Number: 1},
	}

	SortSeatIDs(ids)

	want := []string{"A2", "A10", "B2", "Z1", "AA1"}
	if diff := cmp.Diff(want, Strings(ids)); diff != "" {
		t.Errorf("sorted ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultLayout(t *testing.T) {
	l, err := NewDefault().Layout(DefaultLayout)
	require.NoError(t, err)

	assert.Equal(t, 2*8+3*10+5*12, l.Size())

	tiers := map[string]Tier{
		"A1": TierVIP, "B8": TierVIP,
		"C1": TierPremium, "E10": TierPremium,
		"F1": TierStandard, "J12": TierStandard,
	}
	for raw, want := range tiers {
		id, err := ParseSeatID(raw)
		require.NoError(t, err)
		seat, err := l.Seat(id)
		require.NoError(t, err, raw)
		assert.Equal(t, want, seat.Tier, raw)
	}

	for _, raw := range []string{"A9", "C11", "K1", "J13"} {
		id, err := ParseSeatID(raw)
		require.NoError(t, err)
		_, err = l.Seat(id)
		assert.ErrorIs(t, err, ErrInvalidSeat, raw)
	}

	prices := l.Prices()
	assert.True(t, prices[TierVIP].Equal(decimal.NewFromInt(800)))
	assert.True(t, prices[TierPremium].Equal(decimal.NewFromInt(500)))
	assert.True(t, prices[TierStandard].Equal(decimal.NewFromInt(300)))
}

func TestLayoutResolve(t *testing.T) {
	l, err := NewDefault().Layout(DefaultLayout)
	require.NoError(t, err)

	t.Run("vip plus standard totals 1100", func(t *testing.T) {
		seats, err := l.Resolve([]string{"F3", "A1"})
		require.NoError(t, err)

		assert.Equal(t, []string{"A1", "F3"}, Strings(IDs(seats)))
		assert.True(t, Total(seats).Equal(decimal.NewFromInt(1100)), Total(seats).String())
	})

	t.Run("duplicates are dropped", func(t *testing.T) {
		seats, err := l.Resolve([]string{"b2", "B2", "C5"})
		require.NoError(t, err)

		assert.Equal(t, []string{"B2", "C5"}, Strings(IDs(seats)))
		assert.True(t, Total(seats).Equal(decimal.NewFromInt(1300)))
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := l.Resolve(nil)
		assert.ErrorIs(t, err, ErrNoSeats)
	})

	t.Run("seat outside layout", func(t *testing.T) {
		_, err := l.Resolve([]string{"A1", "Z9"})
		assert.True(t, errors.Is(err, ErrInvalidSeat))
		assert.Contains(t, err.Error(), "Z9")
	})
}

func TestNewLayoutRejectsBadSections(t *testing.T) {
	_, err := NewLayout("broken", []Section{{Tier: "Gold", Rows: []string{"A"}, SeatsPerRow: 4}}, DefaultPrices)
	assert.Error(t, err)

	_, err = NewLayout("dup", []Section{
		{Tier: TierVIP, Rows: []string{"A"}, SeatsPerRow: 4},
		{Tier: TierStandard, Rows: []string{"A"}, SeatsPerRow: 4},
	}, DefaultPrices)
	assert.Error(t, err)
}

func TestCatalogUnknownLayout(t *testing.T) {
	_, err := NewDefault().Layout("imax")
	assert.ErrorIs(t, err, ErrUnknownLayout)
}
