package mocks

import (
	"context"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/stretchr/testify/mock"
)

type MockSessionRepo struct {
	mock.Mock
	repository.SessionRepository
}

func (m *MockSessionRepo) FindValidSession(ctx context.Context, tokenHash string, now time.Time) (*entity.Session, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}
