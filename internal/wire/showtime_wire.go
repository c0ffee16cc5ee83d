package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShowtime(
	r chi.Router,
	showtimeHandler *adaptor.ShowtimeHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Get("/api/showtimes/{id}", showtimeHandler.GetShowtime)
	r.Get("/api/showtimes/{id}/seats", showtimeHandler.GetSeatAvailability)

	r.Route("/api/admin/showtimes", func(r chi.Router) {
		r.Use(middleware.AdminKey(config.App.AdminAPIKey, log))
		r.Post("/", showtimeHandler.CreateShowtime)
	})
}
