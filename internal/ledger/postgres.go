package ledger

import (
	"context"
	"errors"
	"fmt"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const sweepBatchSize = 500

// Postgres keeps seat state in the seat_locks table. Each write statement
// touches one seat, issued in canonical seat order inside one transaction,
// so row locks are always taken in the same order.
type Postgres struct {
	db   database.PgxIface
	log  *zap.Logger
	opts options
}

func NewPostgres(db database.PgxIface, log *zap.Logger, opts ...Option) *Postgres {
	return &Postgres{
		db:   db,
		log:  log.With(zap.String("ledger", "postgres")),
		opts: buildOptions(opts),
	}
}

func (l *Postgres) Availability(ctx context.Context, showtimeID uuid.UUID) ([]catalog.SeatID, error) {
	query := `
		SELECT seat_id
		FROM seat_locks
		WHERE showtime_id = $1
		  AND (state = 'booked' OR expires_at > $2)
	`

	rows, err := l.db.Query(ctx, query, showtimeID, l.opts.clock.Now())
	if err != nil {
		l.log.Error("Failed to read availability",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("availability for showtime %s: %w", showtimeID, err)
	}
	defer rows.Close()

	var taken []catalog.SeatID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan seat lock row: %w", err)
		}
		id, err := catalog.ParseSeatID(raw)
		if err != nil {
			return nil, fmt.Errorf("stored seat id %q: %w", raw, err)
		}
		taken = append(taken, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat lock rows: %w", err)
	}

	catalog.SortSeatIDs(taken)
	return taken, nil
}

func (l *Postgres) TryReserve(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return catalog.ErrNoSeats
	}

	// An expired hold is taken over in place; any other existing row is a
	// conflict and the update is skipped, which RETURNING reports as no row.
	query := `
		INSERT INTO seat_locks (showtime_id, seat_id, booking_id, state, expires_at, updated_at)
		VALUES ($1, $2, $3, 'held', $4, $5)
		ON CONFLICT (showtime_id, seat_id) DO UPDATE
		SET booking_id = EXCLUDED.booking_id,
		    state      = 'held',
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE seat_locks.state = 'held'
		  AND seat_locks.expires_at <= EXCLUDED.updated_at
		RETURNING booking_id
	`

	now := l.opts.clock.Now()
	expiresAt := now.Add(l.opts.holdTTL)

	err := database.RunInTx(ctx, l.db, func(tx pgx.Tx) error {
		var conflicts []catalog.SeatID
		for _, id := range ids {
			var owner uuid.UUID
			err := tx.QueryRow(ctx, query, showtimeID, id.String(), bookingID, expiresAt, now).Scan(&owner)
			if errors.Is(err, pgx.ErrNoRows) {
				conflicts = append(conflicts, id)
				continue
			}
			if err != nil {
				return fmt.Errorf("hold seat %s: %w", id, err)
			}
		}
		if len(conflicts) > 0 {
			return &ConflictError{Seats: conflicts}
		}
		return nil
	})

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return err
	}
	if err != nil {
		l.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("booking_id", bookingID.String()),
			zap.Strings("seats", catalog.Strings(ids)),
		)
		return fmt.Errorf("reserve seats for booking %s: %w", bookingID, err)
	}
	return nil
}

func (l *Postgres) Confirm(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return catalog.ErrNoSeats
	}

	query := `
		UPDATE seat_locks
		SET state = 'booked', expires_at = NULL, updated_at = $4
		WHERE showtime_id = $1
		  AND seat_id = $2
		  AND booking_id = $3
		  AND state = 'held'
		  AND expires_at > $4
	`

	now := l.opts.clock.Now()
	err := database.RunInTx(ctx, l.db, func(tx pgx.Tx) error {
		for _, id := range ids {
			tag, err := tx.Exec(ctx, query, showtimeID, id.String(), bookingID, now)
			if err != nil {
				return fmt.Errorf("confirm seat %s: %w", id, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: %s", ErrNotHeld, id)
			}
		}
		return nil
	})

	if errors.Is(err, ErrNotHeld) {
		return err
	}
	if err != nil {
		l.log.Error("Failed to confirm seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("confirm seats for booking %s: %w", bookingID, err)
	}
	return nil
}

func (l *Postgres) Release(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM seat_locks WHERE showtime_id = $1 AND seat_id = $2 AND booking_id = $3`

	err := database.RunInTx(ctx, l.db, func(tx pgx.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec(ctx, query, showtimeID, id.String(), bookingID); err != nil {
				return fmt.Errorf("release seat %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		l.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("release seats for booking %s: %w", bookingID, err)
	}
	return nil
}

func (l *Postgres) SweepExpired(ctx context.Context) ([]ExpiredHold, error) {
	// SKIP LOCKED keeps the sweep from waiting on, or deadlocking with, a
	// reservation that is taking over the same expired rows.
	query := `
		DELETE FROM seat_locks
		WHERE (showtime_id, seat_id) IN (
			SELECT showtime_id, seat_id
			FROM seat_locks
			WHERE state = 'held' AND expires_at <= $1
			ORDER BY expires_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		AND state = 'held' AND expires_at <= $1
		RETURNING showtime_id, seat_id, booking_id
	`

	rows, err := l.db.Query(ctx, query, l.opts.clock.Now(), sweepBatchSize)
	if err != nil {
		l.log.Error("Failed to sweep expired holds", zap.Error(err))
		return nil, fmt.Errorf("sweep expired holds: %w", err)
	}
	defer rows.Close()

	var expired []expiredSeat
	for rows.Next() {
		var (
			e   expiredSeat
			raw string
		)
		if err := rows.Scan(&e.showtimeID, &raw, &e.bookingID); err != nil {
			return nil, fmt.Errorf("scan expired hold: %w", err)
		}
		id, err := catalog.ParseSeatID(raw)
		if err != nil {
			return nil, fmt.Errorf("stored seat id %q: %w", raw, err)
		}
		e.seat = id
		expired = append(expired, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired holds: %w", err)
	}

	return groupExpired(expired), nil
}
