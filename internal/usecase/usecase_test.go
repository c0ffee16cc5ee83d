package usecase_test

import (
	"testing"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/mocks"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	holdTTL = 10 * time.Minute
)

type harness struct {
	clock     *clock.Fixed
	ledger    *ledger.Memory
	bookings  *mocks.MockBookingRepo
	showtimes *mocks.MockShowtimeRepo
	payment   *mocks.MockPaymentAdapter
	publisher *mocks.MockPublisher
	svc       *usecase.Service
	showtime  *entity.Showtime
	userID    uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clk := clock.NewFixed(testNow)
	h := &harness{
		clock:     clk,
		ledger:    ledger.NewMemory(ledger.WithClock(clk), ledger.WithHoldTTL(holdTTL)),
		bookings:  new(mocks.MockBookingRepo),
		showtimes: new(mocks.MockShowtimeRepo),
		payment:   new(mocks.MockPaymentAdapter),
		publisher: new(mocks.MockPublisher),
		showtime: &entity.Showtime{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			MovieID:      "tt0111161",
			StartsAt:     testNow.Add(3 * time.Hour),
			Layout:       catalog.DefaultLayout,
		},
		userID: uuid.New(),
	}

	config := &utils.Config{
		Ledger:  utils.LedgerConfig{HoldTTL: holdTTL, SweepInterval: time.Minute},
		Payment: utils.PaymentConfig{Currency: "INR", Timeout: 5 * time.Second},
	}
	h.svc = usecase.NewService(usecase.Dependencies{
		Repo: &repository.Repository{
			Booking:  h.bookings,
			Showtime: h.showtimes,
		},
		Catalog:   catalog.NewDefault(),
		Ledger:    h.ledger,
		Payment:   h.payment,
		Publisher: h.publisher,
		Clock:     clk,
	}, config, zap.NewNop())

	h.showtimes.On("FindByID", mock.Anything, h.showtime.ID).Return(h.showtime, nil).Maybe()

	t.Cleanup(func() {
		h.bookings.AssertExpectations(t)
		h.payment.AssertExpectations(t)
		h.publisher.AssertExpectations(t)
	})
	return h
}

// expectEvent registers one publish of typ and captures its envelope.
func (h *harness) expectEvent(typ event.Type, into *event.Envelope) {
	h.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(env event.Envelope) bool {
		return env.EventType == typ
	})).Run(func(args mock.Arguments) {
		if into != nil {
			*into = args.Get(1).(event.Envelope)
		}
	}).Return(nil).Once()
}

func (h *harness) taken(t *testing.T) []string {
	t.Helper()
	ids, err := h.ledger.Availability(t.Context(), h.showtime.ID)
	require.NoError(t, err)
	return catalog.Strings(ids)
}

func pendingStatus() []entity.BookingStatus {
	return []entity.BookingStatus{entity.BookingStatusPending}
}
