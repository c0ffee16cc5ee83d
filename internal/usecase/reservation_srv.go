package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/payment"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxReferenceAttempts = 3

type ReservationService interface {
	// Book holds the seats, records a pending booking, charges the user and
	// confirms. Every failure after the hold releases the seats again.
	Book(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
}

type reservationService struct {
	repo      *repository.Repository
	catalog   *catalog.Catalog
	ledger    ledger.Ledger
	payment   payment.Adapter
	publisher event.Publisher
	clock     clock.Clock

	currency       string
	paymentTimeout time.Duration
	outcomes       metric.Int64Counter
	log            *zap.Logger
}

func NewReservationService(deps Dependencies, config utils.PaymentConfig, log *zap.Logger) ReservationService {
	outcomes, err := otel.Meter("cinema-reservation/usecase").Int64Counter("booking.attempts",
		metric.WithDescription("Booking attempts by outcome"))
	if err != nil {
		outcomes = noop.Int64Counter{}
	}

	currency := config.Currency
	if currency == "" {
		currency = "INR"
	}

	return &reservationService{
		repo:           deps.Repo,
		catalog:        deps.Catalog,
		ledger:         deps.Ledger,
		payment:        deps.Payment,
		publisher:      deps.Publisher,
		clock:          deps.Clock,
		currency:       currency,
		paymentTimeout: config.Timeout,
		outcomes:       outcomes,
		log:            log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) Book(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (resp *response.BookingResponse, err error) {
	ctx, span := tracer.Start(ctx, "reservation.Book", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("showtime_id", req.ShowtimeID),
	))
	defer func() {
		s.record(ctx, err)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}
	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, storageFailure("load showtime", err)
	}
	if showtime == nil {
		return nil, ErrShowtimeNotFound
	}

	now := s.clock.Now()
	if showtime.HasStarted(now) {
		return nil, ErrShowtimeStarted
	}

	layout, err := s.catalog.Layout(showtime.Layout)
	if err != nil {
		return nil, fmt.Errorf("showtime %s: %w", showtimeID, err)
	}
	seats, err := layout.Resolve(req.Seats)
	if err != nil {
		return nil, err
	}
	ids := catalog.IDs(seats)

	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Reference:    utils.GenerateBookingReference(now),
		UserID:       userID,
		ShowtimeID:   showtimeID,
		TotalSeats:   len(seats),
		TotalAmount:  catalog.Total(seats),
		Currency:     s.currency,
		Status:       entity.BookingStatusPending,
	}
	for _, seat := range seats {
		booking.Seats = append(booking.Seats, entity.BookingSeat{SeatID: seat.ID, Tier: seat.Tier, Price: seat.Price})
	}

	log := s.log.With(
		zap.String("booking_id", booking.ID.String()),
		zap.String("showtime_id", showtimeID.String()),
		zap.String("user_id", userID.String()),
		zap.Strings("seats", catalog.Strings(ids)),
	)

	if err := s.ledger.TryReserve(ctx, showtimeID, ids, booking.ID); err != nil {
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			log.Info("Seats not available", zap.Strings("conflicts", catalog.Strings(conflict.Seats)))
			return nil, &SeatsUnavailableError{Seats: catalog.Strings(conflict.Seats)}
		}
		s.releaseSeats(ctx, booking, log)
		return nil, storageFailure("reserve seats", err)
	}

	if err := s.createPending(ctx, booking); err != nil {
		log.Error("Failed to record pending booking", zap.Error(err))
		s.releaseSeats(ctx, booking, log)
		return nil, storageFailure("create booking", err)
	}

	authz, err := s.authorize(ctx, booking)
	if err != nil || !authz.Authorized {
		log.Info("Payment not authorized", zap.Error(err))
		s.abort(ctx, booking, "", log)
		return nil, ErrPaymentFailed
	}

	if err := s.ledger.Confirm(ctx, showtimeID, ids, booking.ID); err != nil {
		s.abort(ctx, booking, authz.Reference, log)
		if errors.Is(err, ledger.ErrNotHeld) {
			log.Warn("Hold lapsed before confirmation")
			return nil, &SeatsUnavailableError{Seats: catalog.Strings(ids)}
		}
		return nil, storageFailure("confirm seats", err)
	}

	if err := s.repo.Booking.MarkConfirmed(ctx, booking.ID, authz.Reference); err != nil {
		s.abort(ctx, booking, authz.Reference, log)
		if errors.Is(err, repository.ErrInvalidTransition) {
			// cancelled underneath us by the sweeper or the user
			return nil, &SeatsUnavailableError{Seats: catalog.Strings(ids)}
		}
		return nil, storageFailure("confirm booking", err)
	}

	booking.Status = entity.BookingStatusConfirmed
	booking.PaymentRef = &authz.Reference
	log.Info("Booking confirmed",
		zap.String("reference", booking.Reference),
		zap.String("amount", booking.TotalAmount.String()),
	)

	publish(ctx, s.publisher, s.clock, log, event.TypeBookingConfirmed, bookingPayload(booking, ""))

	out := response.BookingToResponse(booking)
	return &out, nil
}

// createPending stores the booking, drawing a new reference on collision.
func (s *reservationService) createPending(ctx context.Context, booking *entity.Booking) error {
	var err error
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		err = s.repo.Booking.Create(ctx, booking)
		if !errors.Is(err, repository.ErrDuplicateReference) {
			return err
		}
		booking.Reference = utils.GenerateBookingReference(booking.CreatedAt)
	}
	return err
}

// authorize runs the gateway call under its own deadline. No ledger lock is
// held here; the seats are protected by the hold alone.
func (s *reservationService) authorize(ctx context.Context, booking *entity.Booking) (payment.Authorization, error) {
	ctx, span := tracer.Start(ctx, "payment.Authorize")
	defer span.End()

	if s.paymentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.paymentTimeout)
		defer cancel()
	}

	return s.payment.Authorize(ctx, payment.Charge{
		BookingID: booking.ID,
		Reference: booking.Reference,
		Amount:    booking.TotalAmount,
		Currency:  booking.Currency,
	})
}

// abort undoes an attempt after the pending booking exists: refund when a
// charge went through, free the seats, cancel the record.
func (s *reservationService) abort(ctx context.Context, booking *entity.Booking, paymentRef string, log *zap.Logger) {
	ctx, cancel := detached(ctx)
	defer cancel()

	if paymentRef != "" {
		if err := s.payment.Refund(ctx, paymentRef); err != nil {
			log.Error("Refund failed", zap.Error(err), zap.String("payment_ref", paymentRef))
		}
	}

	s.releaseSeats(ctx, booking, log)

	err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled, entity.BookingStatusPending)
	if err != nil && !errors.Is(err, repository.ErrInvalidTransition) {
		// the sweeper cancels stale pending bookings later
		log.Error("Failed to cancel booking", zap.Error(err))
	}
}

func (s *reservationService) releaseSeats(ctx context.Context, booking *entity.Booking, log *zap.Logger) {
	ctx, cancel := detached(ctx)
	defer cancel()

	if err := s.ledger.Release(ctx, booking.ShowtimeID, booking.SeatIDs(), booking.ID); err != nil {
		// holds still expire on their own
		log.Error("Failed to release seats", zap.Error(err))
	}
}

func (s *reservationService) record(ctx context.Context, err error) {
	outcome := "confirmed"
	switch {
	case err == nil:
	case errors.Is(err, ErrSeatsUnavailable):
		outcome = "seats_unavailable"
	case errors.Is(err, ErrPaymentFailed):
		outcome = "payment_failed"
	case errors.Is(err, ErrStorageFailure):
		outcome = "storage_failure"
	default:
		outcome = "rejected"
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
