package usecase

import (
	"context"
	"errors"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/payment"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	GetUserBookings(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error)

	// CancelBooking cancels a booking of userID before its showtime starts.
	// Cancelling an already cancelled booking succeeds and retries the seat
	// release.
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	ledger    ledger.Ledger
	payment   payment.Adapter
	publisher event.Publisher
	clock     clock.Clock
	log       *zap.Logger
}

func NewBookingService(deps Dependencies, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      deps.Repo,
		ledger:    deps.Ledger,
		payment:   deps.Payment,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req = request.NewPaginatedRequest(req.Page, req.PerPage)

	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, storageFailure("list bookings", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, storageFailure("count bookings", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ownedBooking(ctx context.Context, userID, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, storageFailure("load booking", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		s.log.Warn("Booking access by non-owner",
			zap.String("booking_id", bookingID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error) {
	ctx, span := tracer.Start(ctx, "booking.Cancel")
	defer span.End()

	booking, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, booking.ShowtimeID)
	if err != nil {
		return nil, storageFailure("load showtime", err)
	}
	if showtime == nil {
		return nil, ErrShowtimeNotFound
	}
	if showtime.HasStarted(s.clock.Now()) {
		return nil, ErrTooLate
	}

	log := s.log.With(
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID.String()),
	)

	wasConfirmed := booking.Status == entity.BookingStatusConfirmed
	transitioned := false
	if booking.Status != entity.BookingStatusCancelled {
		err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled,
			entity.BookingStatusPending, entity.BookingStatusConfirmed)
		switch {
		case err == nil:
			transitioned = true
		case errors.Is(err, repository.ErrInvalidTransition):
			// a concurrent cancel or expiry got there first
		default:
			return nil, storageFailure("cancel booking", err)
		}
		booking.Status = entity.BookingStatusCancelled
	}

	if err := s.ledger.Release(ctx, booking.ShowtimeID, booking.SeatIDs(), booking.ID); err != nil {
		log.Error("Failed to release seats of cancelled booking", zap.Error(err))
		return nil, storageFailure("release seats", err)
	}

	if transitioned {
		if wasConfirmed && booking.PaymentRef != nil {
			rctx, cancel := detached(ctx)
			if err := s.payment.Refund(rctx, *booking.PaymentRef); err != nil {
				log.Error("Refund failed", zap.Error(err), zap.String("payment_ref", *booking.PaymentRef))
			}
			cancel()
		}
		log.Info("Booking cancelled")
		publish(ctx, s.publisher, s.clock, log, event.TypeBookingCancelled, bookingPayload(booking, "user_cancelled"))
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}
