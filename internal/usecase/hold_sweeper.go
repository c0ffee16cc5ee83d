package usecase

import (
	"context"
	"errors"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// pending bookings older than hold TTL plus this are abandoned
	staleGrace      = 2 * time.Minute
	staleBatchLimit = 100
)

// HoldSweeper frees expired holds and cancels the pending bookings that
// owned them.
type HoldSweeper struct {
	ledger    ledger.Ledger
	bookings  repository.BookingRepository
	publisher event.Publisher
	clock     clock.Clock

	interval time.Duration
	holdTTL  time.Duration
	log      *zap.Logger
}

func NewHoldSweeper(deps Dependencies, config utils.LedgerConfig, log *zap.Logger) *HoldSweeper {
	holdTTL := config.HoldTTL
	if holdTTL <= 0 {
		holdTTL = ledger.DefaultHoldTTL
	}
	interval := config.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &HoldSweeper{
		ledger:    deps.Ledger,
		bookings:  deps.Repo.Booking,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		interval:  interval,
		holdTTL:   holdTTL,
		log:       log.With(zap.String("worker", "hold_sweeper")),
	}
}

// Run sweeps every interval until ctx is cancelled.
func (h *HoldSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.log.Info("Hold sweeper started", zap.Duration("interval", h.interval))
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Hold sweeper stopped")
			return
		case <-ticker.C:
			if _, err := h.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				h.log.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce runs one pass and returns how many bookings it expired.
func (h *HoldSweeper) SweepOnce(ctx context.Context) (int, error) {
	expiredCount := 0

	expired, err := h.ledger.SweepExpired(ctx)
	if err != nil {
		return 0, storageFailure("sweep holds", err)
	}
	for _, hold := range expired {
		if h.expire(ctx, hold) {
			expiredCount++
		}
	}

	// Pending bookings whose hold vanished without a sweep record, e.g.
	// after a crash between reserve and confirm.
	cutoff := h.clock.Now().Add(-h.holdTTL - staleGrace)
	stale, err := h.bookings.FindStalePending(ctx, cutoff, staleBatchLimit)
	if err != nil {
		return expiredCount, storageFailure("find stale bookings", err)
	}
	for _, b := range stale {
		if !h.cancelPending(ctx, b.ID) {
			continue
		}
		if err := h.ledger.Release(ctx, b.ShowtimeID, b.SeatIDs(), b.ID); err != nil {
			h.log.Error("Failed to release stale booking seats",
				zap.Error(err),
				zap.String("booking_id", b.ID.String()),
			)
		}
		b.Status = entity.BookingStatusCancelled
		publish(ctx, h.publisher, h.clock, h.log, event.TypeBookingExpired, bookingPayload(b, "stale_pending"))
		expiredCount++
	}

	if expiredCount > 0 {
		h.log.Info("Expired abandoned bookings", zap.Int("count", expiredCount))
	}
	return expiredCount, nil
}

func (h *HoldSweeper) expire(ctx context.Context, hold ledger.ExpiredHold) bool {
	if !h.cancelPending(ctx, hold.BookingID) {
		return false
	}

	booking, err := h.bookings.FindByID(ctx, hold.BookingID)
	if err != nil || booking == nil {
		// the record may not exist if the process died before storing it
		booking = &entity.Booking{
			BaseNoDelete: entity.BaseNoDelete{ID: hold.BookingID},
			ShowtimeID:   hold.ShowtimeID,
		}
		for _, id := range hold.Seats {
			booking.Seats = append(booking.Seats, entity.BookingSeat{BookingID: hold.BookingID, SeatID: id})
		}
	}
	booking.Status = entity.BookingStatusCancelled

	h.log.Info("Hold expired",
		zap.String("booking_id", hold.BookingID.String()),
		zap.String("showtime_id", hold.ShowtimeID.String()),
		zap.Strings("seats", catalog.Strings(hold.Seats)),
	)
	publish(ctx, h.publisher, h.clock, h.log, event.TypeBookingExpired, bookingPayload(booking, "hold_expired"))
	return true
}

func (h *HoldSweeper) cancelPending(ctx context.Context, id uuid.UUID) bool {
	err := h.bookings.UpdateStatus(ctx, id, entity.BookingStatusCancelled, entity.BookingStatusPending)
	if err == nil {
		return true
	}
	if !errors.Is(err, repository.ErrInvalidTransition) {
		h.log.Error("Failed to cancel expired booking", zap.Error(err), zap.String("booking_id", id.String()))
	}
	return false
}
