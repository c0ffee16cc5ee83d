package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Simulated is an in-process gateway for development and tests. It approves
// every charge up to DeclineAbove (zero means no limit) after Latency.
type Simulated struct {
	Latency      time.Duration
	DeclineAbove decimal.Decimal

	log      *zap.Logger
	mu       sync.Mutex
	refunded map[string]bool
}

func NewSimulated(latency time.Duration, declineAbove decimal.Decimal, log *zap.Logger) *Simulated {
	return &Simulated{
		Latency:      latency,
		DeclineAbove: declineAbove,
		log:          log.With(zap.String("payment", "simulated")),
		refunded:     make(map[string]bool),
	}
}

func (s *Simulated) Authorize(ctx context.Context, charge Charge) (Authorization, error) {
	if !charge.Amount.IsPositive() {
		return Authorization{}, fmt.Errorf("%w: %s", ErrInvalidAmt, charge.Amount)
	}

	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Authorization{}, ctx.Err()
		case <-timer.C:
		}
	}

	if s.DeclineAbove.IsPositive() && charge.Amount.GreaterThan(s.DeclineAbove) {
		s.log.Info("Charge declined",
			zap.String("booking_id", charge.BookingID.String()),
			zap.String("amount", charge.Amount.String()),
		)
		return Authorization{Authorized: false}, nil
	}

	ref := "sim_" + uuid.NewString()
	s.log.Debug("Charge authorized",
		zap.String("booking_id", charge.BookingID.String()),
		zap.String("payment_ref", ref),
	)
	return Authorization{Authorized: true, Reference: ref}, nil
}

func (s *Simulated) Refund(ctx context.Context, reference string) error {
	s.mu.Lock()
	s.refunded[reference] = true
	s.mu.Unlock()
	return nil
}

func (s *Simulated) Refunded(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refunded[reference]
}
