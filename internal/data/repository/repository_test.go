package repository_test

import (
	"context"
	"testing"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/testutil"
	"cinema-reservation/pkg/database"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RepositoryTestSuite struct {
	suite.Suite
	db   *database.DB
	repo *repository.Repository
	ctx  context.Context

	showtimeID uuid.UUID
	epoch      time.Time
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.db = testutil.NewPostgres(s.T())
	s.repo = repository.NewRepository(s.db, zap.NewNop())
	s.ctx = context.Background()
	s.epoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *RepositoryTestSuite) SetupTest() {
	s.showtimeID = testutil.InsertShowtime(s.T(), s.db, s.epoch.Add(48*time.Hour))
}

func (s *RepositoryTestSuite) newBooking(userID uuid.UUID, createdAt time.Time, seats ...string) *entity.Booking {
	layout, err := catalog.NewDefault().Layout(catalog.DefaultLayout)
	s.Require().NoError(err)
	resolved, err := layout.Resolve(seats)
	s.Require().NoError(err)

	b := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		Reference:    "BK-" + uuid.NewString()[:8],
		UserID:       userID,
		ShowtimeID:   s.showtimeID,
		TotalSeats:   len(resolved),
		TotalAmount:  catalog.Total(resolved),
		Currency:     "INR",
		Status:       entity.BookingStatusPending,
	}
	for _, seat := range resolved {
		b.Seats = append(b.Seats, entity.BookingSeat{SeatID: seat.ID, Tier: seat.Tier, Price: seat.Price})
	}
	s.Require().NoError(s.repo.Booking.Create(s.ctx, b))
	return b
}

func (s *RepositoryTestSuite) TestCreateAndFind() {
	want := s.newBooking(uuid.New(), s.epoch, "C1", "A1")

	got, err := s.repo.Booking.FindByID(s.ctx, want.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	opts := cmp.Options{
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
		cmpopts.EquateApproxTime(time.Millisecond),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		s.T().Errorf("booking mismatch (-want +got):\n%s", diff)
	}
	s.True(got.TotalAmount.Equal(decimal.NewFromInt(1300)))
	s.Equal([]string{"A1", "C1"}, catalog.Strings(got.SeatIDs()))
}

func (s *RepositoryTestSuite) TestFindByIDMissing() {
	got, err := s.repo.Booking.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(got)
}

func (s *RepositoryTestSuite) TestDuplicateReference() {
	first := s.newBooking(uuid.New(), s.epoch, "D1")

	dup := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: s.epoch, UpdatedAt: s.epoch},
		Reference:    first.Reference,
		UserID:       uuid.New(),
		ShowtimeID:   s.showtimeID,
		TotalSeats:   1,
		TotalAmount:  decimal.NewFromInt(500),
		Currency:     "INR",
		Status:       entity.BookingStatusPending,
		Seats:        []entity.BookingSeat{{SeatID: catalog.SeatID{Row: "D", Number: 2}, Tier: catalog.TierPremium, Price: decimal.NewFromInt(500)}},
	}
	err := s.repo.Booking.Create(s.ctx, dup)
	s.ErrorIs(err, repository.ErrDuplicateReference)
}

func (s *RepositoryTestSuite) TestListByUserNewestFirst() {
	user := uuid.New()
	older := s.newBooking(user, s.epoch, "F1")
	newer := s.newBooking(user, s.epoch.Add(time.Minute), "F2", "F3")
	s.newBooking(uuid.New(), s.epoch, "F4")

	list, err := s.repo.Booking.FindByUserID(s.ctx, user, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
	s.Len(list[0].Seats, 2)

	count, err := s.repo.Booking.CountByUserID(s.ctx, user)
	s.Require().NoError(err)
	s.EqualValues(2, count)

	page, err := s.repo.Booking.FindByUserID(s.ctx, user, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(older.ID, page[0].ID)
}

func (s *RepositoryTestSuite) TestStatusTransitions() {
	b := s.newBooking(uuid.New(), s.epoch, "G1")

	s.Require().NoError(s.repo.Booking.MarkConfirmed(s.ctx, b.ID, "pay_1"))
	s.ErrorIs(s.repo.Booking.MarkConfirmed(s.ctx, b.ID, "pay_2"), repository.ErrInvalidTransition)

	err := s.repo.Booking.UpdateStatus(s.ctx, b.ID, entity.BookingStatusCancelled, entity.BookingStatusPending)
	s.ErrorIs(err, repository.ErrInvalidTransition)

	s.Require().NoError(s.repo.Booking.UpdateStatus(s.ctx, b.ID, entity.BookingStatusCancelled,
		entity.BookingStatusPending, entity.BookingStatusConfirmed))

	got, err := s.repo.Booking.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(entity.BookingStatusCancelled, got.Status)
	s.Require().NotNil(got.PaymentRef)
	s.Equal("pay_1", *got.PaymentRef)
}

func (s *RepositoryTestSuite) TestFindStalePending() {
	stale := s.newBooking(uuid.New(), s.epoch.Add(-time.Hour), "H1")
	confirmed := s.newBooking(uuid.New(), s.epoch.Add(-time.Hour), "H2")
	s.Require().NoError(s.repo.Booking.MarkConfirmed(s.ctx, confirmed.ID, "pay"))
	s.newBooking(uuid.New(), s.epoch, "H3")

	got, err := s.repo.Booking.FindStalePending(s.ctx, s.epoch.Add(-30*time.Minute), 100)
	s.Require().NoError(err)

	var ids []uuid.UUID
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	s.Contains(ids, stale.ID)
	s.NotContains(ids, confirmed.ID)
}

func (s *RepositoryTestSuite) TestShowtimes() {
	st := &entity.Showtime{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: s.epoch, UpdatedAt: s.epoch},
		MovieID:      "tt0111161",
		StartsAt:     s.epoch.Add(3 * time.Hour),
		Layout:       catalog.DefaultLayout,
	}
	s.Require().NoError(s.repo.Showtime.Create(s.ctx, st))

	got, err := s.repo.Showtime.FindByID(s.ctx, st.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(st.StartsAt.Equal(got.StartsAt))
	s.Equal(catalog.DefaultLayout, got.Layout)

	upcoming, err := s.repo.Showtime.FindUpcomingByMovie(s.ctx, "tt0111161", s.epoch)
	s.Require().NoError(err)
	s.Len(upcoming, 1)

	missing, err := s.repo.Showtime.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(missing)
}

func TestSessionRepository(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := repository.NewSessionRepository(db, zap.NewNop())
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     uuid.New(),
		TokenHash:  "abc123",
		ExpiresAt:  now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.FindValidSession(ctx, "abc123", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.UserID, got.UserID)

	expired, err := repo.FindValidSession(ctx, "abc123", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, expired)
}
