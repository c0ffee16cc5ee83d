package mocks

import (
	"context"

	"cinema-reservation/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, env event.Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}
