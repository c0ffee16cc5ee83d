package usecase

import (
	"context"
	"fmt"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowtimeService interface {
	CreateShowtime(ctx context.Context, req *request.CreateShowtimeRequest) (*response.ShowtimeResponse, error)
	GetShowtime(ctx context.Context, showtimeID uuid.UUID) (*response.ShowtimeResponse, error)

	// GetSeatAvailability is a point-in-time read; it may be stale by the
	// time the caller books.
	GetSeatAvailability(ctx context.Context, showtimeID uuid.UUID) (*response.SeatAvailabilityResponse, error)
}

type showtimeService struct {
	repo    *repository.Repository
	catalog *catalog.Catalog
	ledger  ledger.Ledger
	clock   clock.Clock
	log     *zap.Logger
}

func NewShowtimeService(deps Dependencies, log *zap.Logger) ShowtimeService {
	return &showtimeService{
		repo:    deps.Repo,
		catalog: deps.Catalog,
		ledger:  deps.Ledger,
		clock:   deps.Clock,
		log:     log.With(zap.String("service", "showtime")),
	}
}

func (s *showtimeService) CreateShowtime(ctx context.Context, req *request.CreateShowtimeRequest) (*response.ShowtimeResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	layout := req.Layout
	if layout == "" {
		layout = catalog.DefaultLayout
	}
	if !s.catalog.Has(layout) {
		return nil, &ValidationError{Fields: map[string]string{"layout": fmt.Sprintf("Unknown layout %q", layout)}}
	}

	now := s.clock.Now()
	if !req.StartsAt.After(now) {
		return nil, &ValidationError{Fields: map[string]string{"starts_at": "Must be in the future"}}
	}

	showtime := &entity.Showtime{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		MovieID:      req.MovieID,
		StartsAt:     req.StartsAt.UTC(),
		Layout:       layout,
	}
	if err := s.repo.Showtime.Create(ctx, showtime); err != nil {
		return nil, storageFailure("create showtime", err)
	}

	s.log.Info("Showtime created",
		zap.String("showtime_id", showtime.ID.String()),
		zap.String("movie_id", showtime.MovieID),
		zap.Time("starts_at", showtime.StartsAt),
	)

	resp := response.ShowtimeToResponse(showtime)
	return &resp, nil
}

func (s *showtimeService) GetShowtime(ctx context.Context, showtimeID uuid.UUID) (*response.ShowtimeResponse, error) {
	showtime, err := s.load(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	resp := response.ShowtimeToResponse(showtime)
	return &resp, nil
}

func (s *showtimeService) GetSeatAvailability(ctx context.Context, showtimeID uuid.UUID) (*response.SeatAvailabilityResponse, error) {
	showtime, err := s.load(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	layout, err := s.catalog.Layout(showtime.Layout)
	if err != nil {
		return nil, fmt.Errorf("showtime %s: %w", showtimeID, err)
	}

	taken, err := s.ledger.Availability(ctx, showtimeID)
	if err != nil {
		return nil, storageFailure("read availability", err)
	}

	resp := response.NewSeatAvailabilityResponse(showtimeID.String(), layout, taken)
	return &resp, nil
}

func (s *showtimeService) load(ctx context.Context, showtimeID uuid.UUID) (*entity.Showtime, error) {
	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, storageFailure("load showtime", err)
	}
	if showtime == nil {
		return nil, ErrShowtimeNotFound
	}
	return showtime, nil
}
