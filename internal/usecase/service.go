package usecase

import (
	"context"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/payment"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// cleanupTimeout bounds compensating work that runs after the request
// context may already be gone.
const cleanupTimeout = 10 * time.Second

var tracer = otel.Tracer("cinema-reservation/usecase")

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repo      *repository.Repository
	Catalog   *catalog.Catalog
	Ledger    ledger.Ledger
	Payment   payment.Adapter
	Publisher event.Publisher
	Clock     clock.Clock
}

type Service struct {
	Reservation ReservationService
	Booking     BookingService
	Showtime    ShowtimeService
	Sweeper     *HoldSweeper
}

func NewService(deps Dependencies, config *utils.Config, log *zap.Logger) *Service {
	if deps.Publisher == nil {
		deps.Publisher = event.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}

	return &Service{
		Reservation: NewReservationService(deps, config.Payment, log),
		Booking:     NewBookingService(deps, log),
		Showtime:    NewShowtimeService(deps, log),
		Sweeper:     NewHoldSweeper(deps, config.Ledger, log),
	}
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

func bookingPayload(b *entity.Booking, reason string) event.BookingPayload {
	p := event.BookingPayload{
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		ShowtimeID:  b.ShowtimeID,
		Seats:       catalog.Strings(b.SeatIDs()),
		TotalAmount: b.TotalAmount.StringFixed(2),
		Currency:    b.Currency,
		Status:      string(b.Status),
		Reason:      reason,
	}
	if b.PaymentRef != nil {
		p.PaymentRef = *b.PaymentRef
	}
	return p
}

// publish sends an event and only logs failures.
func publish(ctx context.Context, pub event.Publisher, clk clock.Clock, log *zap.Logger, typ event.Type, payload event.BookingPayload) {
	env := event.NewEnvelope(typ, payload, utils.GetRequestIDFromContext(ctx), clk.Now())
	if err := pub.Publish(ctx, env); err != nil {
		log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("event_type", string(typ)),
			zap.String("booking_id", payload.BookingID.String()),
		)
	}
}
