package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidTransition  = errors.New("booking status transition not allowed")
	ErrDuplicateReference = errors.New("booking reference already used")
)

type BookingRepository interface {
	// Create stores a pending booking together with its seat lines.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// UpdateStatus moves a booking to status when its current status is one
	// of from. ErrInvalidTransition when nothing matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, from ...entity.BookingStatus) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, paymentRef string) error

	// FindStalePending returns pending bookings created before the cutoff.
	FindStalePending(ctx context.Context, before time.Time, limit int) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, reference, user_id, showtime_id, total_seats, total_amount, currency, status, payment_ref, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var (
		booking entity.Booking
		amount  int64
	)
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.UserID,
		&booking.ShowtimeID,
		&booking.TotalSeats,
		&amount,
		&booking.Currency,
		&booking.Status,
		&booking.PaymentRef,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.TotalAmount = utils.FromMinorUnits(amount)
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	seatRows := make([][]any, len(booking.Seats))
	for i, seat := range booking.Seats {
		seatRows[i] = []any{booking.ID, i + 1, seat.SeatID.String(), string(seat.Tier), utils.ToMinorUnits(seat.Price)}
	}

	err := database.RunInTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			booking.ID,
			booking.Reference,
			booking.UserID,
			booking.ShowtimeID,
			booking.TotalSeats,
			utils.ToMinorUnits(booking.TotalAmount),
			booking.Currency,
			booking.Status,
			booking.PaymentRef,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "position", "seat_id", "tier", "price"},
			pgx.CopyFromRows(seatRows),
		)
		return err
	})

	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateReference, booking.Reference)
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}

	for i := range booking.Seats {
		booking.Seats[i].BookingID = booking.ID
		booking.Seats[i].Position = i + 1
	}
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}

	if err := r.loadSeats(ctx, []*entity.Booking{booking}); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.queryBookings(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID, err)
	}

	if err := r.loadSeats(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID, err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, from ...entity.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`

	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	result, err := r.db.Exec(ctx, query, id, status, allowed)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id, status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, id, status)
	}
	return nil
}

func (r *bookingRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, paymentRef string) error {
	query := `
		UPDATE bookings
		SET status = 'confirmed', payment_ref = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id, paymentRef)
	if err != nil {
		r.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("confirm booking %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s to confirmed", ErrInvalidTransition, id)
	}
	return nil
}

func (r *bookingRepository) FindStalePending(ctx context.Context, before time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`

	bookings, err := r.queryBookings(ctx, query, before, limit)
	if err != nil {
		r.log.Error("Failed to find stale pending bookings", zap.Error(err))
		return nil, fmt.Errorf("find stale pending bookings: %w", err)
	}

	if err := r.loadSeats(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// loadSeats fills Seats of every booking with one query.
func (r *bookingRepository) loadSeats(ctx context.Context, bookings []*entity.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*entity.Booking, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID.String())
	}

	query := `
		SELECT booking_id, position, seat_id, tier, price
		FROM booking_seats
		WHERE booking_id = ANY($1::uuid[])
		ORDER BY booking_id, position
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to load booking seats", zap.Error(err))
		return fmt.Errorf("load booking seats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seat    entity.BookingSeat
			rawSeat string
			tier    string
			price   int64
		)
		if err := rows.Scan(&seat.BookingID, &seat.Position, &rawSeat, &tier, &price); err != nil {
			return fmt.Errorf("scan booking seat row: %w", err)
		}
		seat.SeatID, err = catalog.ParseSeatID(rawSeat)
		if err != nil {
			return fmt.Errorf("stored seat id %q: %w", rawSeat, err)
		}
		seat.Tier = catalog.Tier(tier)
		seat.Price = utils.FromMinorUnits(price)

		if b, ok := byID[seat.BookingID]; ok {
			b.Seats = append(b.Seats, seat)
		}
	}
	return rows.Err()
}
