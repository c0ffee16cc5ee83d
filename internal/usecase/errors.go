package usecase

import (
	"errors"
	"fmt"
	"strings"

	"cinema-reservation/pkg/utils"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrShowtimeStarted  = errors.New("showtime has already started")
	ErrSeatsUnavailable = errors.New("seats unavailable")
	ErrPaymentFailed    = errors.New("payment failed")
	ErrForbidden        = errors.New("booking belongs to another user")
	ErrTooLate          = errors.New("too late to cancel")
	ErrStorageFailure   = errors.New("storage unavailable")
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SeatsUnavailableError names the seats the caller has to re-select.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ","))
}

func (e *SeatsUnavailableError) Is(target error) bool {
	return target == ErrSeatsUnavailable
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
