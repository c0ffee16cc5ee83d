package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/internal/auth"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	authn auth.Authenticator,
	rdb *redis.Client,
	clk clock.Clock,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Authenticate(authn, log))

		// only booking attempts spend tokens
		r.With(middleware.RateLimit(config.RateLimit, rdb, clk, log)).Post("/", bookingHandler.CreateBooking)

		r.Get("/", bookingHandler.GetUserBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Patch("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
