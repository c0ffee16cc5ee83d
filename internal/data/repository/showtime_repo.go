package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowtimeRepository interface {
	Create(ctx context.Context, showtime *entity.Showtime) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error)
	FindUpcomingByMovie(ctx context.Context, movieID string, from time.Time) ([]*entity.Showtime, error)
}

type showtimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowtimeRepository(db database.PgxIface, log *zap.Logger) ShowtimeRepository {
	return &showtimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "showtime")),
	}
}

func (r *showtimeRepository) Create(ctx context.Context, showtime *entity.Showtime) error {
	query := `
		INSERT INTO showtimes (id, movie_id, starts_at, layout, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		showtime.ID,
		showtime.MovieID,
		showtime.StartsAt,
		showtime.Layout,
		showtime.CreatedAt,
		showtime.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create showtime",
			zap.Error(err),
			zap.String("movie_id", showtime.MovieID),
			zap.Time("starts_at", showtime.StartsAt),
		)
		return fmt.Errorf("create showtime for movie %s: %w", showtime.MovieID, err)
	}

	return nil
}

func (r *showtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, starts_at, layout, created_at, updated_at
		FROM showtimes
		WHERE id = $1
	`

	var showtime entity.Showtime
	err := r.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.StartsAt,
		&showtime.Layout,
		&showtime.CreatedAt,
		&showtime.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime by ID",
			zap.Error(err),
			zap.String("showtime_id", id.String()),
		)
		return nil, fmt.Errorf("find showtime by ID %s: %w", id, err)
	}

	return &showtime, nil
}

func (r *showtimeRepository) FindUpcomingByMovie(ctx context.Context, movieID string, from time.Time) ([]*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, starts_at, layout, created_at, updated_at
		FROM showtimes
		WHERE movie_id = $1 AND starts_at > $2
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, movieID, from)
	if err != nil {
		r.log.Error("Failed to find showtimes by movie",
			zap.Error(err),
			zap.String("movie_id", movieID),
		)
		return nil, fmt.Errorf("find showtimes by movie %s: %w", movieID, err)
	}

	showtimes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Showtime, error) {
		var s entity.Showtime
		err := row.Scan(&s.ID, &s.MovieID, &s.StartsAt, &s.Layout, &s.CreatedAt, &s.UpdatedAt)
		return &s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan showtime rows: %w", err)
	}
	return showtimes, nil
}
