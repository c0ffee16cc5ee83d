package payment

import (
	"context"
	"fmt"
	"strings"

	"cinema-reservation/pkg/utils"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"go.uber.org/zap"
)

// Stripe authorizes charges as confirmed PaymentIntents against a saved
// payment method.
type Stripe struct {
	paymentMethod string
	log           *zap.Logger
}

func NewStripe(secretKey, paymentMethod string, log *zap.Logger) *Stripe {
	stripe.Key = secretKey
	return &Stripe{
		paymentMethod: paymentMethod,
		log:           log.With(zap.String("payment", "stripe")),
	}
}

func (s *Stripe) Authorize(ctx context.Context, charge Charge) (Authorization, error) {
	amount := utils.ToMinorUnits(charge.Amount)
	if amount <= 0 {
		return Authorization{}, fmt.Errorf("%w: %s", ErrInvalidAmt, charge.Amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(strings.ToLower(charge.Currency)),
		PaymentMethod: stripe.String(s.paymentMethod),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String("Booking " + charge.Reference),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("booking-" + charge.BookingID.String())
	params.AddMetadata("booking_id", charge.BookingID.String())
	params.AddMetadata("reference", charge.Reference)

	pi, err := paymentintent.New(params)
	if err != nil {
		s.log.Warn("PaymentIntent failed",
			zap.Error(err),
			zap.String("booking_id", charge.BookingID.String()),
		)
		return Authorization{}, fmt.Errorf("stripe payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		s.log.Info("PaymentIntent not succeeded",
			zap.String("booking_id", charge.BookingID.String()),
			zap.String("payment_intent", pi.ID),
			zap.String("status", string(pi.Status)),
		)
		return Authorization{Authorized: false, Reference: pi.ID}, nil
	}

	return Authorization{Authorized: true, Reference: pi.ID}, nil
}

func (s *Stripe) Refund(ctx context.Context, reference string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(reference)}
	params.Context = ctx

	if _, err := refund.New(params); err != nil {
		s.log.Error("Refund failed", zap.Error(err), zap.String("payment_intent", reference))
		return fmt.Errorf("stripe refund %s: %w", reference, err)
	}
	return nil
}
