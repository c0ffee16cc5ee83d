package adaptor

import (
	"errors"
	"net/http"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Booking  *BookingHandler
	Showtime *ShowtimeHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking:  NewBookingHandler(service.Reservation, service.Booking, log),
		Showtime: NewShowtimeHandler(service.Showtime, log),
	}
}

// handleServiceError maps usecase errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validation  *usecase.ValidationError
		unavailable *usecase.SeatsUnavailableError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Any("errors", validation.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)

	case errors.Is(err, catalog.ErrInvalidSeat), errors.Is(err, catalog.ErrNoSeats):
		log.Warn("Invalid seat selection for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.As(err, &unavailable):
		log.Info(operation+" failed - seats unavailable", zap.Strings("seats", unavailable.Seats))
		utils.ResponseConflict(w, "Seats unavailable", unavailable.Seats)

	case errors.Is(err, usecase.ErrShowtimeStarted), errors.Is(err, usecase.ErrTooLate):
		log.Info(operation+" failed - showtime started", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrPaymentFailed):
		log.Info(operation+" failed - payment", zap.Error(err))
		utils.ResponsePaymentRequired(w, "Payment failed")

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "Booking belongs to another user")

	case errors.Is(err, usecase.ErrShowtimeNotFound), errors.Is(err, usecase.ErrBookingNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrStorageFailure):
		log.Error(operation+" failed - storage", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable, try again")

	default:
		log.Error("Unexpected error in "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name, map[string]string{name: "Must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
