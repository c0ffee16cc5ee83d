package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateShowtime(t *testing.T) {
	h := newHarness(t)

	var stored *entity.Showtime
	h.showtimes.On("Create", mock.Anything, mock.AnythingOfType("*entity.Showtime")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*entity.Showtime) }).
		Return(nil).Once()

	startsAt := testNow.Add(48 * time.Hour)
	resp, err := h.svc.Showtime.CreateShowtime(context.Background(), &request.CreateShowtimeRequest{
		MovieID:  "tt0068646",
		StartsAt: startsAt,
	})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, stored.ID.String(), resp.ID)
	assert.Equal(t, catalog.DefaultLayout, resp.Layout)
	assert.True(t, startsAt.Equal(resp.StartsAt))
	h.showtimes.AssertExpectations(t)
}

func TestCreateShowtime_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  *request.CreateShowtimeRequest
	}{
		{"missing movie", &request.CreateShowtimeRequest{StartsAt: testNow.Add(time.Hour)}},
		{"in the past", &request.CreateShowtimeRequest{MovieID: "tt1", StartsAt: testNow.Add(-time.Hour)}},
		{"unknown layout", &request.CreateShowtimeRequest{MovieID: "tt1", StartsAt: testNow.Add(time.Hour), Layout: "imax"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.Showtime.CreateShowtime(context.Background(), tt.req)
			require.ErrorIs(t, err, usecase.ErrValidation)
			h.showtimes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestGetSeatAvailability(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	held := uuid.New()
	require.NoError(t, h.ledger.TryReserve(ctx, h.showtime.ID,
		[]catalog.SeatID{{Row: "C", Number: 2}, {Row: "A", Number: 8}}, held))

	resp, err := h.svc.Showtime.GetSeatAvailability(ctx, h.showtime.ID)
	require.NoError(t, err)

	assert.Equal(t, h.showtime.ID.String(), resp.ShowtimeID)
	assert.Equal(t, []string{"A8", "C2"}, resp.BookedSeats)
	assert.Equal(t, 106, resp.TotalSeats)
	require.Len(t, resp.Sections, 3)
	assert.True(t, resp.SeatPrices[string(catalog.TierVIP)].Equal(decimal.NewFromInt(800)))

	// an expired hold is no longer reported
	h.clock.Advance(holdTTL)
	resp, err = h.svc.Showtime.GetSeatAvailability(ctx, h.showtime.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.BookedSeats)
}

func TestGetSeatAvailability_Errors(t *testing.T) {
	h := newHarness(t)

	missing := uuid.New()
	h.showtimes.On("FindByID", mock.Anything, missing).Return(nil, nil).Once()
	_, err := h.svc.Showtime.GetSeatAvailability(context.Background(), missing)
	require.ErrorIs(t, err, usecase.ErrShowtimeNotFound)

	broken := uuid.New()
	h.showtimes.On("FindByID", mock.Anything, broken).Return(nil, errors.New("pool closed")).Once()
	_, err = h.svc.Showtime.GetSeatAvailability(context.Background(), broken)
	require.ErrorIs(t, err, usecase.ErrStorageFailure)
}
